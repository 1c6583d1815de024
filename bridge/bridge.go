// SPDX-License-Identifier: Unlicense OR MIT

package bridge

import (
	"fmt"
	"log/slog"
	"sync"
)

// Renderer is the native side of the bridge.
type Renderer interface {
	// Initialize binds the native rendering context to a surface. It may
	// block while the context is created. A non-nil error means no context
	// exists for the surface.
	Initialize(id SurfaceID, dims Dimensions) error
}

// Resizer is implemented by renderers that resize their context in place.
type Resizer interface {
	Resize(id SurfaceID, dims Dimensions) error
}

// Detacher is implemented by renderers that use the surface from another
// thread. Detach must not return before the renderer stopped using the
// surface.
type Detacher interface {
	Detach(id SurfaceID)
}

// Option configures a Bridge.
type Option func(b *Bridge)

// WithLogger overrides the package logger for a single Bridge.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		b.log = l
	}
}

// ForwardResize controls whether resize events of a bound surface reach
// renderers implementing Resizer. It is enabled by default.
func ForwardResize(enable bool) Option {
	return func(b *Bridge) {
		b.forwardResize = enable
	}
}

// Bridge serializes Surface Host events into a Lifecycle and forwards
// them to a Renderer.
//
// The event methods are meant to be called from the host's callback
// thread. They are safe for concurrent use, as are the snapshot methods.
type Bridge struct {
	renderer      Renderer
	log           *slog.Logger
	forwardResize bool

	mu    sync.Mutex
	life  Lifecycle
	bound bool
	stats Stats
}

// New returns a Bridge in the Uninitialized state.
func New(r Renderer, opts ...Option) *Bridge {
	if r == nil {
		panic("bridge: nil Renderer")
	}
	b := &Bridge{
		renderer:      r,
		forwardResize: true,
		life:          Uninitialized{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Available reports that the host surface id can be rendered to.
//
// The renderer is initialized unless it is already bound to id. A
// renderer bound to another surface is detached first. If initialization
// fails the surface is still available, but unbound, and the returned
// error wraps ErrNativeInit. The bridge doesn't retry; a later Available
// for the same surface does.
func (b *Bridge) Available(id SurfaceID, dims Dimensions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == 0 || !dims.Valid() {
		return b.ignore("available", id, ErrInvalidSurface)
	}
	return b.available("available", id, dims)
}

// Resized reports a new size of the current surface. A resize never
// initializes the renderer again for the same surface. A resize naming
// another surface is a host error; it is logged and handled as if the
// other surface became available.
func (b *Bridge) Resized(id SurfaceID, dims Dimensions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.life.(Available)
	if !ok {
		return b.ignore("resized", id, ErrProtocolViolation)
	}
	if id == 0 || !dims.Valid() {
		return b.ignore("resized", id, ErrInvalidSurface)
	}
	if cur.ID != id {
		b.stats.Mismatches++
		b.logger().Warn("resize names another surface, reinitializing",
			"current", cur.ID, "surface", id, "dims", dims)
		return b.available("resized", id, dims)
	}
	b.life = Available{ID: id, Dims: dims}
	b.stats.Resizes++
	b.logger().Debug("surface resized", "surface", id, "dims", dims, "bound", b.bound)
	if !b.bound || !b.forwardResize {
		return nil
	}
	rs, ok := b.renderer.(Resizer)
	if !ok {
		return nil
	}
	if err := guard(func() error { return rs.Resize(id, dims) }); err != nil {
		b.logger().Warn("renderer resize failed", "surface", id, "dims", dims, "err", err)
		return &EventError{Event: "resized", ID: id, State: StateAvailable, Err: err}
	}
	return nil
}

// Updated reports that the host produced a new frame for the surface.
// The renderer reads the surface itself; Updated only feeds Stats.
func (b *Bridge) Updated(id SurfaceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.life.(Available)
	if !ok {
		return b.ignore("updated", id, ErrProtocolViolation)
	}
	if cur.ID != id {
		b.stats.Mismatches++
		b.logger().Warn("update names another surface", "current", cur.ID, "surface", id)
		return &EventError{Event: "updated", ID: id, State: StateAvailable, Err: ErrIdentityMismatch}
	}
	b.stats.Frames++
	return nil
}

// Destroyed reports that the host destroyed the surface. The binding is
// cleared and, for a Detacher, Destroyed waits for the renderer to stop
// using the surface. The renderer context itself is not torn down.
//
// Destroyed returns true: the host may release the surface immediately.
func (b *Bridge) Destroyed(id SurfaceID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch cur := b.life.(type) {
	case Available:
		if cur.ID != id {
			b.stats.Mismatches++
			b.logger().Warn("destroy names another surface", "current", cur.ID, "surface", id)
		}
	default:
		b.logger().Debug("destroy without an available surface", "state", cur.State(), "surface", id)
	}
	b.detach()
	b.life = Destroyed{Last: id}
	b.logger().Info("surface destroyed", "surface", id)
	return true
}

// Lifecycle returns the current lifecycle.
func (b *Bridge) Lifecycle() Lifecycle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.life
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	return b.Lifecycle().State()
}

// Bound reports whether the renderer is initialized for the current surface.
func (b *Bridge) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bound
}

// Stats returns a copy of the diagnostic counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Bridge) available(event string, id SurfaceID, dims Dimensions) error {
	prev := b.life.State()
	if cur, ok := b.life.(Available); ok && cur.ID == id && b.bound {
		b.life = Available{ID: id, Dims: dims}
		b.stats.Violations++
		b.logger().Warn("surface is already bound", "surface", id, "dims", dims)
		return nil
	}
	b.detach()
	b.life = Available{ID: id, Dims: dims}
	b.logger().Debug("initializing renderer", "surface", id, "dims", dims)
	if err := guard(func() error { return b.renderer.Initialize(id, dims) }); err != nil {
		b.stats.InitFailures++
		b.logger().Warn("renderer initialization failed", "surface", id, "dims", dims, "err", err)
		return &EventError{Event: event, ID: id, State: prev, Err: fmt.Errorf("%w: %w", ErrNativeInit, err)}
	}
	b.bound = true
	b.stats.Initializations++
	b.logger().Info("surface bound", "surface", id, "dims", dims)
	return nil
}

// detach clears the binding and waits for a Detacher to let go of the
// bound surface.
func (b *Bridge) detach() {
	if !b.bound {
		return
	}
	b.bound = false
	d, ok := b.renderer.(Detacher)
	if !ok {
		return
	}
	id := b.life.(Available).ID
	err := guard(func() error {
		d.Detach(id)
		return nil
	})
	if err != nil {
		b.logger().Error("renderer detach failed", "surface", id, "err", err)
	}
}

func (b *Bridge) ignore(event string, id SurfaceID, err error) error {
	b.stats.Violations++
	st := b.life.State()
	b.logger().Warn("ignoring host event", "event", event, "surface", id, "state", st, "err", err)
	return &EventError{Event: event, ID: id, State: st, Err: err}
}

func (b *Bridge) logger() *slog.Logger {
	if b.log != nil {
		return b.log
	}
	return Logger()
}

// guard turns a renderer panic into an error so that it never unwinds
// into the host.
func guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return f()
}
