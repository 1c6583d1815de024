// SPDX-License-Identifier: Unlicense OR MIT

//go:build darwin || freebsd || linux

// Package native loads a rendering backend from a shared library.
//
// The library exports C functions named after a configurable prefix:
//
//	int32_t <prefix>_initialize(uint64_t surface, uint32_t width, uint32_t height);
//	int32_t <prefix>_resize(uint32_t width, uint32_t height);   // optional
//	int32_t <prefix>_draw(void);                                // optional
//	void    <prefix>_detach(void);                              // optional
//	void    <prefix>_release(void);                             // optional
//
// A non-zero result means success. The surface argument is the host's
// SurfaceID; on Android it is an ANativeWindow pointer.
package native

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/surfacepoc/texturebridge/bridge"
)

// Config selects the library and its symbol prefix.
type Config struct {
	// Path of the library. If empty, $TEXTUREBRIDGE_LIB is used, then
	// lib<Prefix>.so is searched next to the working directory and the
	// executable.
	Path string
	// Prefix of the exported symbols.
	Prefix string
}

// Library is a loaded backend. It implements render.Backend and must only
// be used from a single OS thread.
type Library struct {
	path   string
	handle uintptr

	initialize func(surface uint64, width, height uint32) int32
	resize     func(width, height uint32) int32
	draw       func() int32
	detach     func()
	release    func()
}

var (
	// ErrSymbol is returned when a required symbol is missing.
	ErrSymbol = errors.New("native: missing symbol")
	// ErrCall is returned when a library function reports failure.
	ErrCall = errors.New("native: call failed")
)

var (
	mu   sync.Mutex
	libs = make(map[string]*Library)
)

// Open loads the library described by c. Libraries are loaded once per
// path and prefix and never unloaded.
func Open(c Config) (*Library, error) {
	if c.Prefix == "" {
		return nil, fmt.Errorf("native: empty symbol prefix")
	}
	path := libraryPath(c)
	key := path + "\x00" + c.Prefix
	mu.Lock()
	defer mu.Unlock()
	if l, ok := libs[key]; ok {
		return l, nil
	}
	bridge.Logger().Debug("native: loading backend", "path", path, "prefix", c.Prefix)
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("native: load %s: %w", path, err)
	}
	l := &Library{path: path, handle: h}
	if err := l.register(c.Prefix); err != nil {
		purego.Dlclose(h)
		return nil, err
	}
	libs[key] = l
	bridge.Logger().Info("native: backend loaded", "path", path)
	return l, nil
}

func (l *Library) register(prefix string) error {
	syms := []struct {
		name     string
		fn       any
		required bool
	}{
		{"initialize", &l.initialize, true},
		{"resize", &l.resize, false},
		{"draw", &l.draw, false},
		{"detach", &l.detach, false},
		{"release", &l.release, false},
	}
	for _, s := range syms {
		name := prefix + "_" + s.name
		ptr, err := purego.Dlsym(l.handle, name)
		if err != nil {
			if s.required {
				return fmt.Errorf("%w %s in %s", ErrSymbol, name, l.path)
			}
			continue
		}
		purego.RegisterFunc(s.fn, ptr)
	}
	return nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

func (l *Library) Bind(id bridge.SurfaceID, dims bridge.Dimensions) error {
	if l.initialize(uint64(id), dims.Width, dims.Height) == 0 {
		return fmt.Errorf("%w: initialize(%d, %v)", ErrCall, id, dims)
	}
	return nil
}

func (l *Library) Resize(dims bridge.Dimensions) error {
	if l.resize == nil {
		return nil
	}
	if l.resize(dims.Width, dims.Height) == 0 {
		return fmt.Errorf("%w: resize(%v)", ErrCall, dims)
	}
	return nil
}

func (l *Library) Draw() error {
	if l.draw == nil {
		return nil
	}
	if l.draw() == 0 {
		return fmt.Errorf("%w: draw", ErrCall)
	}
	return nil
}

func (l *Library) Unbind() {
	if l.detach != nil {
		l.detach()
	}
}

func (l *Library) Release() {
	if l.release != nil {
		l.release()
	}
}

// libraryPath returns the path of the backend library.
func libraryPath(c Config) string {
	if c.Path != "" {
		return c.Path
	}
	if p := os.Getenv("TEXTUREBRIDGE_LIB"); p != "" {
		return p
	}
	name := libraryName(c.Prefix)
	search := []string{name, filepath.Join("lib", name)}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		search = append(search, filepath.Join(dir, name), filepath.Join(dir, "..", "lib", name))
	}
	for _, p := range search {
		if _, err := os.Stat(p); err == nil {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	// Let the dynamic linker search for it.
	return name
}

func libraryName(prefix string) string {
	switch runtime.GOOS {
	case "darwin", "ios":
		return "lib" + prefix + ".dylib"
	default:
		return "lib" + prefix + ".so"
	}
}
