// SPDX-License-Identifier: Unlicense OR MIT

/*
Package soft implements a render.Backend in pure Go.

It clears the surface to red and draws a triangle with green, blue and red
corners, interpolating the vertex colors across the triangle. Frames live
in an image.RGBA that is handed to an optional Present function.
*/
package soft

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/vector"

	"github.com/surfacepoc/texturebridge/bridge"
)

// Options configures a Renderer.
type Options struct {
	// Background is the clear color. The zero value means opaque red.
	Background color.NRGBA
	// Present, if set, receives every drawn frame on the render thread.
	// The image must not be retained after Present returns.
	Present func(id bridge.SurfaceID, frame *image.RGBA)
}

// Renderer is a software rendering backend.
type Renderer struct {
	opts Options

	mu    sync.Mutex
	id    bridge.SurfaceID
	frame *image.RGBA
}

var errUnbound = errors.New("soft: no surface bound")

// Vertex positions in normalized device coordinates and their colors.
var triangle = [3]struct {
	x, y float32
	c    color.NRGBA
}{
	{-0.5, -0.5, color.NRGBA{G: 0xff, A: 0xff}},
	{0.0, 0.5, color.NRGBA{B: 0xff, A: 0xff}},
	{0.5, -0.5, color.NRGBA{R: 0xff, A: 0xff}},
}

func New(opts Options) *Renderer {
	if opts.Background == (color.NRGBA{}) {
		opts.Background = color.NRGBA{R: 0xff, A: 0xff}
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) Bind(id bridge.SurfaceID, dims bridge.Dimensions) error {
	if !dims.Valid() {
		return bridge.ErrInvalidSurface
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
	r.frame = image.NewRGBA(image.Rect(0, 0, int(dims.Width), int(dims.Height)))
	return nil
}

func (r *Renderer) Resize(dims bridge.Dimensions) error {
	if !dims.Valid() {
		return bridge.ErrInvalidSurface
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame == nil {
		return errUnbound
	}
	r.frame = image.NewRGBA(image.Rect(0, 0, int(dims.Width), int(dims.Height)))
	return nil
}

func (r *Renderer) Draw() error {
	r.mu.Lock()
	frame, id := r.frame, r.id
	if frame == nil {
		r.mu.Unlock()
		return errUnbound
	}
	paint(frame, r.opts.Background)
	r.mu.Unlock()
	if r.opts.Present != nil {
		r.opts.Present(id, frame)
	}
	return nil
}

func (r *Renderer) Unbind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = 0
	r.frame = nil
}

func (r *Renderer) Release() {
	r.Unbind()
}

// Snapshot returns a copy of the last frame, or nil if no surface is bound.
func (r *Renderer) Snapshot() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame == nil {
		return nil
	}
	img := image.NewRGBA(r.frame.Bounds())
	copy(img.Pix, r.frame.Pix)
	return img
}

func paint(frame *image.RGBA, bg color.NRGBA) {
	bounds := frame.Bounds()
	draw.Draw(frame, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	var pts [3][2]float32
	for i, v := range triangle {
		pts[i] = [2]float32{(v.x + 1) / 2 * w, (1 - v.y) / 2 * h}
	}
	vr := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	vr.DrawOp = draw.Over
	vr.MoveTo(pts[0][0], pts[0][1])
	vr.LineTo(pts[1][0], pts[1][1])
	vr.LineTo(pts[2][0], pts[2][1])
	vr.ClosePath()
	vr.Draw(frame, bounds, &shader{pts: pts}, image.Point{})
}

// shader is an image that interpolates the triangle's vertex colors with
// barycentric coordinates.
type shader struct {
	pts [3][2]float32
}

func (s *shader) ColorModel() color.Model { return color.NRGBAModel }

func (s *shader) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (s *shader) At(x, y int) color.Color {
	px, py := float32(x)+.5, float32(y)+.5
	a, b, c := s.pts[0], s.pts[1], s.pts[2]
	det := (b[1]-c[1])*(a[0]-c[0]) + (c[0]-b[0])*(a[1]-c[1])
	if det == 0 {
		return color.NRGBA{}
	}
	w0 := ((b[1]-c[1])*(px-c[0]) + (c[0]-b[0])*(py-c[1])) / det
	w1 := ((c[1]-a[1])*(px-c[0]) + (a[0]-c[0])*(py-c[1])) / det
	w2 := 1 - w0 - w1
	mix := func(c0, c1, c2 uint8) uint8 {
		v := w0*float32(c0) + w1*float32(c1) + w2*float32(c2)
		switch {
		case v < 0:
			return 0
		case v > 0xff:
			return 0xff
		}
		return uint8(v + .5)
	}
	v0, v1, v2 := triangle[0].c, triangle[1].c, triangle[2].c
	return color.NRGBA{
		R: mix(v0.R, v1.R, v2.R),
		G: mix(v0.G, v1.G, v2.G),
		B: mix(v0.B, v1.B, v2.B),
		A: 0xff,
	}
}
