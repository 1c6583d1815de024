// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the texturebridge configuration from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendSoft   = "soft"
	BackendNative = "native"
)

// Config is the root configuration.
type Config struct {
	// Backend selects the renderer: "soft" or "native".
	Backend string       `toml:"backend" yaml:"backend"`
	Native  NativeConfig `toml:"native" yaml:"native"`
	Bridge  BridgeConfig `toml:"bridge" yaml:"bridge"`
	Log     LogConfig    `toml:"log" yaml:"log"`
	Window  WindowConfig `toml:"window" yaml:"window"`
}

type NativeConfig struct {
	// Path of the backend library. Empty means search by prefix.
	Path string `toml:"path" yaml:"path"`
	// Prefix of the exported symbols.
	Prefix string `toml:"prefix" yaml:"prefix"`
}

type BridgeConfig struct {
	// ForwardResize passes resize events of a bound surface to the renderer.
	ForwardResize bool `toml:"forward_resize" yaml:"forward_resize"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
}

// WindowConfig sizes the desktop window used by the X11 host.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// ErrInvalid is wrapped by validation errors.
var ErrInvalid = errors.New("config: invalid")

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend: BackendSoft,
		Native: NativeConfig{
			Prefix: "texturebridge",
		},
		Bridge: BridgeConfig{
			ForwardResize: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Window: WindowConfig{
			Title:  "texturebridge",
			Width:  640,
			Height: 480,
		},
	}
}

// Load reads the file at path on top of Default. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		return c, fmt.Errorf("config: unsupported format %q", ext)
	}
	if err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSoft:
	case BackendNative:
		if c.Native.Prefix == "" {
			return fmt.Errorf("%w: native backend needs a symbol prefix", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	return nil
}

// SlogLevel converts Level to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
