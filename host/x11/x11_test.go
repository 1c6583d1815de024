// SPDX-License-Identifier: Unlicense OR MIT

package x11

import (
	"context"
	"image"
	"os"
	"testing"
	"time"

	"github.com/surfacepoc/texturebridge/bridge"
)

type counter struct {
	inits int
	dims  bridge.Dimensions
}

func (c *counter) Initialize(_ bridge.SurfaceID, d bridge.Dimensions) error {
	c.inits++
	c.dims = d
	return nil
}

func TestEventMapping(t *testing.T) {
	c := new(counter)
	b := bridge.New(c)
	h := &Host{id: 42, b: b}

	// Configure before map is not forwarded.
	h.onConfigure(10, 10)
	h.onExpose(0)
	if st := b.Stats(); st.Violations != 0 {
		t.Errorf("events before map reached the bridge: %+v", st)
	}
	h.onMap(640, 480)
	h.onMap(640, 480)
	if c.inits != 1 || c.dims != (bridge.Dimensions{Width: 640, Height: 480}) {
		t.Fatalf("got %d initializations with %v", c.inits, c.dims)
	}
	// A move without a size change is not a resize.
	h.onConfigure(640, 480)
	h.onConfigure(800, 600)
	h.onExpose(2)
	h.onExpose(0)
	st := b.Stats()
	if st.Resizes != 1 || st.Frames != 1 {
		t.Errorf("got stats %+v, want one resize and one frame", st)
	}
	if got := b.Lifecycle(); got != (bridge.Available{ID: 42, Dims: bridge.Dimensions{Width: 800, Height: 600}}) {
		t.Errorf("got lifecycle %#v", got)
	}
	h.onUnmap()
	h.onUnmap()
	if got := b.Lifecycle(); got != (bridge.Destroyed{Last: 42}) {
		t.Errorf("got lifecycle %#v", got)
	}
	// Mapping again opens a new window.
	h.onMap(100, 100)
	if c.inits != 2 || !b.Bound() {
		t.Errorf("got %d initializations, bound %v", c.inits, b.Bound())
	}
}

func TestExposeRedraws(t *testing.T) {
	b := bridge.New(new(counter))
	redraws := 0
	h := &Host{id: 7, b: b, redraw: func() { redraws++ }}
	h.onExpose(0)
	if redraws != 0 {
		t.Errorf("redraw before map")
	}
	h.onMap(16, 16)
	h.onExpose(1)
	h.onExpose(0)
	if redraws != 1 {
		t.Errorf("got %d redraws, want 1", redraws)
	}
	h.onUnmap()
	h.onExpose(0)
	if redraws != 1 {
		t.Errorf("redraw after unmap")
	}
}

func TestWindow(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no X server")
	}
	h, err := New(Options{Title: "texturebridge test", Width: 64, Height: 32})
	if err != nil {
		t.Skip(err)
	}
	c := new(counter)
	b := bridge.New(c)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, b) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context expired")
	}
	if c.inits != 1 {
		t.Errorf("got %d initializations, want 1", c.inits)
	}
	if got := b.State(); got != bridge.StateDestroyed {
		t.Errorf("got state %v, want Destroyed", got)
	}
	// Presenting another surface is ignored.
	h.Present(h.ID()+1, image.NewRGBA(image.Rect(0, 0, 1, 1)))
}
