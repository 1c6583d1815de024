// SPDX-License-Identifier: Unlicense OR MIT

// Package render runs a thread affine rendering backend on a dedicated
// OS thread and exposes it to a bridge.Bridge.
package render

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/surfacepoc/texturebridge/bridge"
)

// Backend is a native rendering context. All methods are called from the
// same locked OS thread.
type Backend interface {
	// Bind creates or attaches the context to a surface.
	Bind(id bridge.SurfaceID, dims bridge.Dimensions) error
	// Resize adapts the bound context to new dimensions.
	Resize(dims bridge.Dimensions) error
	// Draw renders and presents a frame to the bound surface.
	Draw() error
	// Unbind stops all use of the bound surface.
	Unbind()
	// Release frees the context.
	Release()
}

// ErrStopped is returned by operations on a released Loop.
var ErrStopped = errors.New("render: loop stopped")

// Loop owns a Backend and the OS thread it runs on. It implements
// bridge.Renderer, bridge.Resizer and bridge.Detacher.
type Loop struct {
	backend Backend

	reqs    chan request
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// pending is the latest resize not yet seen by the render thread.
	// The pointed to value is never modified after it is stored.
	pending atomic.Pointer[resize]
	redraw  atomic.Bool
	frames  atomic.Int64

	mu  sync.Mutex
	err error
}

type opcode uint8

const (
	opBind opcode = iota
	opUnbind
)

type request struct {
	op   opcode
	id   bridge.SurfaceID
	dims bridge.Dimensions
	done chan error
}

type resize struct {
	id   bridge.SurfaceID
	dims bridge.Dimensions
}

// New starts the render thread for b.
func New(b Backend) *Loop {
	l := &Loop{
		backend: b,
		reqs:    make(chan request),
		// Wake is buffered so posting work never waits for a frame
		// in progress.
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	// Native contexts are bound to a single OS thread.
	runtime.LockOSThread()
	// Don't UnlockOSThread to avoid reuse by the Go runtime.

	var (
		bound bool
		cur   bridge.SurfaceID
	)
	unbind := func() {
		if bound {
			l.backend.Unbind()
			bound = false
		}
	}
	draw := func() {
		if !bound {
			return
		}
		if err := l.backend.Draw(); err != nil {
			l.setErr(err)
			bridge.Logger().Warn("render: draw failed", "surface", cur, "err", err)
			return
		}
		l.frames.Add(1)
	}
	defer l.backend.Release()
	defer unbind()
	for {
		select {
		case req := <-l.reqs:
			switch req.op {
			case opBind:
				unbind()
				err := l.backend.Bind(req.id, req.dims)
				if err == nil {
					bound, cur = true, req.id
					draw()
				}
				req.done <- err
			case opUnbind:
				if bound && cur == req.id {
					unbind()
				}
				// Drop work for the old surface.
				if p := l.pending.Load(); p != nil && p.id == req.id {
					l.pending.CompareAndSwap(p, nil)
				}
				req.done <- nil
			}
		case <-l.wake:
			needDraw := l.redraw.Swap(false)
			if p := l.pending.Swap(nil); p != nil && bound && p.id == cur {
				if err := l.backend.Resize(p.dims); err != nil {
					l.setErr(err)
					bridge.Logger().Warn("render: resize failed", "surface", cur, "dims", p.dims, "err", err)
				} else {
					needDraw = true
				}
			}
			if needDraw {
				draw()
			}
		case <-l.stop:
			return
		}
	}
}

// Initialize binds the backend to the surface and draws a first frame. It
// blocks until the render thread completed Bind.
func (l *Loop) Initialize(id bridge.SurfaceID, dims bridge.Dimensions) error {
	return l.call(request{op: opBind, id: id, dims: dims})
}

// Resize schedules a resize of the bound surface and returns without
// waiting for it.
func (l *Loop) Resize(id bridge.SurfaceID, dims bridge.Dimensions) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	l.pending.Store(&resize{id: id, dims: dims})
	l.signal()
	return nil
}

// Detach returns after the render thread stopped using the surface.
func (l *Loop) Detach(id bridge.SurfaceID) {
	// A stopped loop no longer touches any surface.
	_ = l.call(request{op: opUnbind, id: id})
}

// Invalidate schedules a frame for the bound surface.
func (l *Loop) Invalidate() {
	l.redraw.Store(true)
	l.signal()
}

// Frames returns the number of frames drawn.
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}

// Err returns the first resize or draw error.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Release unbinds and releases the backend and stops the render thread.
func (l *Loop) Release() {
	l.once.Do(func() {
		close(l.stop)
	})
	<-l.stopped
}

func (l *Loop) call(req request) error {
	req.done = make(chan error, 1)
	select {
	case l.reqs <- req:
	case <-l.stopped:
		return ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-l.stopped:
		select {
		case err := <-req.done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil {
		l.err = err
	}
}
