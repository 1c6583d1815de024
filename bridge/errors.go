// SPDX-License-Identifier: Unlicense OR MIT

package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation is returned for host events that arrive in
	// an order the lifecycle doesn't allow. The event is ignored.
	ErrProtocolViolation = errors.New("bridge: protocol violation")

	// ErrIdentityMismatch is returned when an event names a surface
	// other than the current one.
	ErrIdentityMismatch = errors.New("bridge: surface identity mismatch")

	// ErrNativeInit is returned when the renderer failed to create its
	// context for a surface.
	ErrNativeInit = errors.New("bridge: native initialization failed")

	// ErrInvalidSurface is returned for a zero SurfaceID or empty Dimensions.
	ErrInvalidSurface = errors.New("bridge: invalid surface")
)

// EventError describes a host event that was ignored or failed.
type EventError struct {
	// Event is the name of the host event, such as "resized".
	Event string
	ID    SurfaceID
	// State is the lifecycle state when the event arrived.
	State State
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s(%d) in state %v: %v", e.Event, e.ID, e.State, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
