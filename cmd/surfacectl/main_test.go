// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestReplaySnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	if err := runReplay([]string{"-snapshot", out, "testdata/recreate.txt"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got.X != 32 || got.Y != 32 {
		t.Errorf("got snapshot size %v, want 32x32", got)
	}
}

func TestReplayReordered(t *testing.T) {
	if err := runReplay([]string{"testdata/reorder.txt"}); err != nil {
		t.Fatal(err)
	}
}

func TestReplayUsage(t *testing.T) {
	if err := runReplay(nil); !errors.Is(err, errUsage) {
		t.Errorf("got %v, want errUsage", err)
	}
	if err := runReplay([]string{"-backend", "vulkan", "testdata/reorder.txt"}); err == nil {
		t.Error("replay with an unknown backend succeeded")
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("backend: soft\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCheck([]string{"-config", path}); err != nil {
		t.Fatal(err)
	}
	if err := runCheck([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Error("check of a missing file succeeded")
	}
}
