// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/surfacepoc/texturebridge/bridge"
)

// fakeBackend records calls made on the render thread.
type fakeBackend struct {
	mu      sync.Mutex
	ops     []string
	bindErr error
	drawn   chan struct{}
	// thread returns an identifier of the calling OS thread.
	thread  func() int
	threads map[int]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		drawn:   make(chan struct{}, 100),
		threads: make(map[int]bool),
	}
}

func (f *fakeBackend) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	if f.thread != nil {
		f.threads[f.thread()] = true
	}
}

func (f *fakeBackend) Bind(id bridge.SurfaceID, dims bridge.Dimensions) error {
	f.record(fmt.Sprintf("bind %d %v", id, dims))
	return f.bindErr
}

func (f *fakeBackend) Resize(dims bridge.Dimensions) error {
	f.record(fmt.Sprintf("resize %v", dims))
	return nil
}

func (f *fakeBackend) Draw() error {
	f.record("draw")
	f.drawn <- struct{}{}
	return nil
}

func (f *fakeBackend) Unbind()  { f.record("unbind") }
func (f *fakeBackend) Release() { f.record("release") }

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeBackend) waitDraw(t *testing.T) {
	t.Helper()
	select {
	case <-f.drawn:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for a frame")
	}
}

func equalOps(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got ops %q, want %q", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got ops %q, want %q", got, want)
		}
	}
}

var _ interface {
	bridge.Renderer
	bridge.Resizer
	bridge.Detacher
} = (*Loop)(nil)

func TestLoopLifecycle(t *testing.T) {
	f := newFakeBackend()
	l := New(f)
	if err := l.Initialize(1, bridge.Dimensions{Width: 100, Height: 200}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	if err := l.Resize(1, bridge.Dimensions{Width: 150, Height: 250}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	l.Detach(1)
	l.Release()
	equalOps(t, f.calls(), []string{
		"bind 1 100x200",
		"draw",
		"resize 150x250",
		"draw",
		"unbind",
		"release",
	})
	if n := l.Frames(); n != 2 {
		t.Errorf("got %d frames, want 2", n)
	}
}

func TestLoopBindError(t *testing.T) {
	f := newFakeBackend()
	f.bindErr = errors.New("no EGL config")
	l := New(f)
	defer l.Release()
	if err := l.Initialize(1, bridge.Dimensions{Width: 1, Height: 1}); err != f.bindErr {
		t.Fatalf("got error %v, want %v", err, f.bindErr)
	}
	// Nothing is bound, so no frame may be drawn.
	l.Invalidate()
	l.Detach(1)
	equalOps(t, f.calls(), []string{"bind 1 1x1"})
}

func TestLoopDropsStaleResize(t *testing.T) {
	f := newFakeBackend()
	l := New(f)
	defer l.Release()
	if err := l.Initialize(1, bridge.Dimensions{Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	l.Detach(1)
	l.Resize(1, bridge.Dimensions{Width: 20, Height: 20})
	if err := l.Initialize(2, bridge.Dimensions{Width: 30, Height: 30}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	l.Detach(2)
	for _, op := range f.calls() {
		if op == "resize 20x20" {
			t.Errorf("resize for a detached surface reached the backend: %q", f.calls())
		}
	}
}

func TestLoopStopped(t *testing.T) {
	f := newFakeBackend()
	l := New(f)
	if err := l.Initialize(1, bridge.Dimensions{Width: 1, Height: 1}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	l.Release()
	l.Release()
	if err := l.Initialize(2, bridge.Dimensions{Width: 1, Height: 1}); !errors.Is(err, ErrStopped) {
		t.Errorf("Initialize after Release: got %v, want ErrStopped", err)
	}
	if err := l.Resize(1, bridge.Dimensions{Width: 2, Height: 2}); !errors.Is(err, ErrStopped) {
		t.Errorf("Resize after Release: got %v, want ErrStopped", err)
	}
	// Detach after Release must not block.
	l.Detach(1)
	equalOps(t, f.calls(), []string{"bind 1 1x1", "draw", "unbind", "release"})
}

func TestLoopWithBridge(t *testing.T) {
	f := newFakeBackend()
	l := New(f)
	defer l.Release()
	b := bridge.New(l)
	if err := b.Available(5, bridge.Dimensions{Width: 64, Height: 48}); err != nil {
		t.Fatal(err)
	}
	f.waitDraw(t)
	if !b.Destroyed(5) {
		t.Fatal("Destroyed returned false")
	}
	// Destroyed is a barrier: the backend unbound before it returned.
	ops := f.calls()
	if last := ops[len(ops)-1]; last != "unbind" {
		t.Errorf("last backend op before release is %q, want unbind", last)
	}
}
