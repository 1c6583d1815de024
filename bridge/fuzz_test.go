// SPDX-License-Identifier: Unlicense OR MIT

package bridge

import (
	"errors"
	"testing"
)

// windowChecker fails the test if a surface is initialized twice within
// one availability window.
type windowChecker struct {
	t     *testing.T
	live  bool
	bound SurfaceID
	fail  bool
}

func (c *windowChecker) Initialize(id SurfaceID, _ Dimensions) error {
	if c.live {
		c.t.Errorf("surface %d initialized while %d is bound", id, c.bound)
	}
	if c.fail {
		c.live = false
		return errFuzzInit
	}
	c.live, c.bound = true, id
	return nil
}

func (c *windowChecker) Detach(id SurfaceID) {
	if !c.live || c.bound != id {
		c.t.Errorf("detach of unbound surface %d", id)
	}
	c.live = false
}

var errFuzzInit = errors.New("init failed")

func FuzzEvents(f *testing.F) {
	f.Add([]byte("\x00\x01\x02\x03"))
	f.Add([]byte("\x01\x01\x00\x01\x02\x01\x03\x01"))
	f.Add([]byte("\x00\x01\x03\x01\x00\x02\x01\x03\x02\x02"))
	f.Add([]byte("\x04\x01\x01\x02\x00\x01\x00\x01"))
	f.Fuzz(func(t *testing.T, cmds []byte) {
		c := &windowChecker{t: t}
		b := New(c)
		const (
			cmdAvailable = iota
			cmdResized
			cmdUpdated
			cmdDestroyed
			cmdFailNext
			maxCmd
		)
		for len(cmds) >= 2 {
			id := SurfaceID(cmds[1]%3 + 1)
			d := Dimensions{Width: uint32(cmds[1]) + 1, Height: uint32(len(cmds))}
			before := b.Lifecycle()
			switch cmds[0] % maxCmd {
			case cmdAvailable:
				b.Available(id, d)
				c.fail = false
			case cmdResized:
				b.Resized(id, d)
				c.fail = false
			case cmdUpdated:
				b.Updated(id)
				if got := b.Lifecycle(); got != before {
					t.Fatalf("update changed lifecycle from %#v to %#v", before, got)
				}
			case cmdDestroyed:
				b.Destroyed(id)
			case cmdFailNext:
				c.fail = true
			}
			switch l := b.Lifecycle().(type) {
			case Uninitialized, Destroyed:
				if b.Bound() {
					t.Fatalf("bound in %#v", l)
				}
			case Available:
				if !l.Dims.Valid() || l.ID == 0 {
					t.Fatalf("invalid available lifecycle %#v", l)
				}
				if b.Bound() != (c.live && c.bound == l.ID) {
					t.Fatalf("binding %v disagrees with renderer (live %v, surface %d) in %#v", b.Bound(), c.live, c.bound, l)
				}
			default:
				t.Fatalf("unknown lifecycle %#v", l)
			}
			cmds = cmds[2:]
		}
	})
}
