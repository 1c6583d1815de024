// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/surfacepoc/texturebridge/backend"
	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/host/script"
)

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "configuration file (.toml, .yaml)")
	name := fs.String("backend", "", "override the configured backend")
	snapshot := fs.String("snapshot", "", "write the last presented frame to this PNG file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *name != "" {
		c.Backend = *name
	}
	setupLogger(c)

	events, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}
	var last lastFrame
	b, l, err := backend.Start(c, backend.Options{Present: last.store})
	if err != nil {
		return err
	}
	outs := script.Replay(b, events)
	l.Release()
	if err := script.Format(os.Stdout, outs); err != nil {
		return err
	}
	st := b.Stats()
	fmt.Printf("state=%v bound=%v initializations=%d failures=%d resizes=%d frames=%d violations=%d mismatches=%d drawn=%d\n",
		b.State(), b.Bound(), st.Initializations, st.InitFailures, st.Resizes, st.Frames, st.Violations, st.Mismatches, l.Frames())
	if err := l.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "render error: %v\n", err)
	}
	if *snapshot != "" {
		return last.writePNG(*snapshot)
	}
	return nil
}

func readScript(path string) ([]script.Event, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return script.Parse(r)
}

// lastFrame keeps a copy of the most recently presented frame.
type lastFrame struct {
	mu  sync.Mutex
	img *image.RGBA
}

func (f *lastFrame) store(_ bridge.SurfaceID, frame *image.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img == nil || f.img.Bounds() != frame.Bounds() {
		f.img = image.NewRGBA(frame.Bounds())
	}
	copy(f.img.Pix, frame.Pix)
}

func (f *lastFrame) writePNG(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img == nil {
		return fmt.Errorf("no frame was presented")
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, f.img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
