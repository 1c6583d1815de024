// SPDX-License-Identifier: Unlicense OR MIT

// Package backend creates the render.Backend selected by configuration.
package backend

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/config"
	"github.com/surfacepoc/texturebridge/render"
)

// Options are passed to every Factory.
type Options struct {
	// Present receives frames of backends that render in memory.
	Present func(id bridge.SurfaceID, frame *image.RGBA)
}

// Factory creates a backend from configuration.
type Factory func(c config.Config, opts Options) (render.Backend, error)

// ErrNotAvailable is returned for a backend that isn't registered on this
// platform.
var ErrNotAvailable = errors.New("backend: not available")

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a backend available by name. A later registration with
// the same name replaces the earlier one.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Available returns the sorted names of the registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates the backend named by c.Backend.
func Open(c config.Config, opts Options) (render.Backend, error) {
	registryMu.RLock()
	f, ok := factories[c.Backend]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAvailable, c.Backend)
	}
	return f(c, opts)
}

// Start opens the configured backend, starts its render thread and
// returns a Bridge driving it.
func Start(c config.Config, opts Options) (*bridge.Bridge, *render.Loop, error) {
	b, err := Open(c, opts)
	if err != nil {
		return nil, nil, err
	}
	l := render.New(b)
	br := bridge.New(l, bridge.ForwardResize(c.Bridge.ForwardResize))
	return br, l, nil
}
