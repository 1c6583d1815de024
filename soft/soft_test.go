// SPDX-License-Identifier: Unlicense OR MIT

package soft

import (
	"image"
	"image/color"
	"testing"

	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/render"
)

var _ render.Backend = (*Renderer)(nil)

func TestDraw(t *testing.T) {
	var presented int
	r := New(Options{
		Present: func(id bridge.SurfaceID, frame *image.RGBA) {
			if id != 7 {
				t.Errorf("presented surface %d, want 7", id)
			}
			presented++
		},
	})
	if err := r.Bind(7, bridge.Dimensions{Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}
	if presented != 1 {
		t.Errorf("presented %d frames, want 1", presented)
	}
	img := r.Snapshot()
	red := color.RGBA{R: 0xff, A: 0xff}
	for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}, {10, 50}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("background at %v is %v, want %v", p, got, red)
		}
	}
	// Inside the triangle.
	if got := img.RGBAAt(50, 60); got.G == 0 && got.B == 0 {
		t.Errorf("center pixel %v is not shaded", got)
	}
	// Near the lower left vertex the triangle is mostly green.
	if got := img.RGBAAt(28, 73); got.G <= got.R || got.G <= got.B {
		t.Errorf("pixel near the green vertex is %v", got)
	}
}

func TestResize(t *testing.T) {
	r := New(Options{})
	if err := r.Resize(bridge.Dimensions{Width: 4, Height: 4}); err == nil {
		t.Error("resize of unbound renderer succeeded")
	}
	r.Bind(1, bridge.Dimensions{Width: 10, Height: 20})
	if err := r.Resize(bridge.Dimensions{Width: 30, Height: 40}); err != nil {
		t.Fatal(err)
	}
	r.Draw()
	if got, want := r.Snapshot().Bounds(), image.Rect(0, 0, 30, 40); got != want {
		t.Errorf("got bounds %v, want %v", got, want)
	}
}

func TestUnbind(t *testing.T) {
	r := New(Options{Background: color.NRGBA{B: 0xff, A: 0xff}})
	r.Bind(1, bridge.Dimensions{Width: 2, Height: 2})
	r.Unbind()
	if err := r.Draw(); err == nil {
		t.Error("draw after unbind succeeded")
	}
	if r.Snapshot() != nil {
		t.Error("snapshot after unbind")
	}
	if err := r.Bind(2, bridge.Dimensions{}); err == nil {
		t.Error("bind with empty dimensions succeeded")
	}
}

func TestLoop(t *testing.T) {
	frames := make(chan *image.RGBA, 1)
	r := New(Options{
		Present: func(_ bridge.SurfaceID, frame *image.RGBA) {
			select {
			case frames <- frame:
			default:
			}
		},
	})
	l := render.New(r)
	defer l.Release()
	b := bridge.New(l)
	if err := b.Available(3, bridge.Dimensions{Width: 16, Height: 9}); err != nil {
		t.Fatal(err)
	}
	frame := <-frames
	if got, want := frame.Bounds(), image.Rect(0, 0, 16, 9); got != want {
		t.Errorf("got frame bounds %v, want %v", got, want)
	}
	b.Destroyed(3)
	if r.Snapshot() != nil {
		t.Error("renderer still holds a frame after destroy")
	}
}
