// SPDX-License-Identifier: Unlicense OR MIT

package bridge

import "fmt"

// SurfaceID is an opaque, host assigned handle to a drawable surface.
// The bridge never dereferences it. Zero is not a valid identity.
type SurfaceID uint64

// Dimensions is the size of a surface in pixels.
type Dimensions struct {
	Width, Height uint32
}

// Valid reports whether both sides are non-zero.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// State is the coarse lifecycle state of a Bridge.
type State uint8

const (
	// StateUninitialized is the state of a new Bridge.
	StateUninitialized State = iota
	// StateAvailable means a surface is ready for rendering.
	StateAvailable
	// StateDestroyed means the last surface was destroyed. A new
	// surface may still become available.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateAvailable:
		return "Available"
	case StateDestroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Lifecycle is the full lifecycle state. Its concrete type is one of
// Uninitialized, Available or Destroyed.
type Lifecycle interface {
	State() State
	isLifecycle()
}

// Uninitialized is the Lifecycle before any surface became available.
type Uninitialized struct{}

// Available is the Lifecycle while a surface can be rendered to.
type Available struct {
	ID   SurfaceID
	Dims Dimensions
}

// Destroyed is the Lifecycle after the host destroyed a surface.
type Destroyed struct {
	// Last is the identity named by the destroy event.
	Last SurfaceID
}

func (Uninitialized) State() State { return StateUninitialized }
func (Available) State() State     { return StateAvailable }
func (Destroyed) State() State     { return StateDestroyed }

func (Uninitialized) isLifecycle() {}
func (Available) isLifecycle()     {}
func (Destroyed) isLifecycle()     {}

// Stats holds diagnostic counters of a Bridge.
type Stats struct {
	// Initializations counts successful renderer initializations.
	Initializations int
	// InitFailures counts failed renderer initializations.
	InitFailures int
	// Resizes counts resize events applied to the current surface.
	Resizes int
	// Frames counts update events for the current surface.
	Frames int
	// Violations counts ignored out of order events.
	Violations int
	// Mismatches counts events naming a surface other than the current one.
	Mismatches int
}
