// SPDX-License-Identifier: Unlicense OR MIT

// Package x11 is a desktop Surface Host backed by an X11 window.
//
// The window's lifecycle maps onto host events: MapNotify makes the surface
// available, ConfigureNotify resizes it, Expose reports a new frame and
// requests a redraw, UnmapNotify or DestroyNotify destroy it. The SurfaceID
// is the window id.
package x11

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/surfacepoc/texturebridge/bridge"
)

// Options configures the window.
type Options struct {
	Title         string
	Width, Height int
	// Redraw, if set, is called when the window needs its contents
	// painted again, typically render.Loop.Invalidate.
	Redraw func()
}

// Host owns an X connection and a single window.
type Host struct {
	xu  *xgbutil.XUtil
	win *xwindow.Window
	id  bridge.SurfaceID

	redraw func()

	// Event state, only touched by the event loop.
	b      *bridge.Bridge
	mapped bool
	dims   bridge.Dimensions

	// mu guards frame against the render thread.
	mu    sync.Mutex
	frame *xgraphics.Image
}

// New connects to the X server named by $DISPLAY and creates an unmapped
// window.
func New(opts Options) (*Host, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}
	win, err := xwindow.Generate(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("x11: generate window: %w", err)
	}
	err = win.CreateChecked(xu.RootWin(), 0, 0, opts.Width, opts.Height,
		xproto.CwBackPixel, 0x000000)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("x11: create window: %w", err)
	}
	if err := win.Listen(xproto.EventMaskStructureNotify, xproto.EventMaskExposure); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("x11: select input: %w", err)
	}
	if opts.Title != "" {
		ewmh.WmNameSet(xu, win.Id, opts.Title)
	}
	return &Host{xu: xu, win: win, id: bridge.SurfaceID(win.Id), redraw: opts.Redraw}, nil
}

// ID returns the SurfaceID of the window.
func (h *Host) ID() bridge.SurfaceID {
	return h.id
}

// Run maps the window and delivers its events to b until the window is
// closed or ctx is done. The connection is closed when Run returns.
func (h *Host) Run(ctx context.Context, b *bridge.Bridge) error {
	h.b = b
	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		geom, err := h.win.Geometry()
		if err != nil {
			bridge.Logger().Warn("x11: query geometry", "err", err)
			return
		}
		h.onMap(geom.Width(), geom.Height())
	}).Connect(h.xu, h.win.Id)
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		h.onConfigure(int(ev.Width), int(ev.Height))
	}).Connect(h.xu, h.win.Id)
	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		h.onExpose(int(ev.Count))
	}).Connect(h.xu, h.win.Id)
	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		h.onUnmap()
	}).Connect(h.xu, h.win.Id)
	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		h.onUnmap()
		xevent.Quit(xu)
	}).Connect(h.xu, h.win.Id)
	h.win.WMGracefulClose(func(w *xwindow.Window) {
		h.destroy()
	})

	// The event loop only checks for Quit after an event, and destroying
	// the window produces one.
	stop := context.AfterFunc(ctx, h.destroy)
	defer stop()
	h.win.Map()
	xevent.Main(h.xu)
	xevent.Detach(h.xu, h.win.Id)

	h.mu.Lock()
	if h.frame != nil {
		h.frame.Destroy()
		h.frame = nil
	}
	h.mu.Unlock()
	h.xu.Conn().Close()
	return ctx.Err()
}

// Present paints a frame into the window. It is meant as the soft
// renderer's Present function and may be called from any goroutine.
func (h *Host) Present(id bridge.SurfaceID, frame *image.RGBA) {
	if id != h.id {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frame != nil {
		h.frame.Destroy()
	}
	h.frame = xgraphics.NewConvert(h.xu, frame)
	if err := h.frame.XSurfaceSet(h.win.Id); err != nil {
		bridge.Logger().Warn("x11: create pixmap", "err", err)
		return
	}
	h.frame.XDraw()
	h.frame.XPaint(h.win.Id)
}

// destroy destroys the window without detaching its event handlers, unlike
// xwindow.Window.Destroy, so that DestroyNotify still ends the event loop.
func (h *Host) destroy() {
	xproto.DestroyWindow(h.xu.Conn(), h.win.Id)
}

func (h *Host) onMap(width, height int) {
	if h.mapped {
		return
	}
	h.mapped = true
	h.dims = dimensions(width, height)
	if err := h.b.Available(h.id, h.dims); err != nil {
		bridge.Logger().Warn("x11: surface not bound", "surface", h.id, "err", err)
	}
}

func (h *Host) onConfigure(width, height int) {
	d := dimensions(width, height)
	if !h.mapped || d == h.dims {
		return
	}
	h.dims = d
	h.b.Resized(h.id, d)
}

func (h *Host) onExpose(count int) {
	// Only the last of a series of expose events counts as a frame.
	if !h.mapped || count != 0 {
		return
	}
	if err := h.b.Updated(h.id); err != nil {
		return
	}
	if h.redraw != nil {
		h.redraw()
	}
}

func (h *Host) onUnmap() {
	if !h.mapped {
		return
	}
	h.mapped = false
	h.b.Destroyed(h.id)
}

func dimensions(width, height int) bridge.Dimensions {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return bridge.Dimensions{Width: uint32(width), Height: uint32(height)}
}
