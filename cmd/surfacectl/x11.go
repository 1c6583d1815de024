// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/surfacepoc/texturebridge/backend"
	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/config"
	"github.com/surfacepoc/texturebridge/host/x11"
	"github.com/surfacepoc/texturebridge/render"
)

func runX11(args []string) error {
	fs := flag.NewFlagSet("x11", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "configuration file (.toml, .yaml)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	setupLogger(c)

	// The loop exists before the window is mapped, so Expose always
	// finds it.
	var l *render.Loop
	h, err := x11.New(x11.Options{
		Title:  c.Window.Title,
		Width:  c.Window.Width,
		Height: c.Window.Height,
		Redraw: func() { l.Invalidate() },
	})
	if err != nil {
		return err
	}
	opts := backend.Options{}
	if c.Backend == config.BackendSoft {
		opts.Present = h.Present
	}
	b, loop, err := backend.Start(c, opts)
	if err != nil {
		return err
	}
	l = loop
	defer l.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Closing the window ends the run.
		defer cancel()
		h.Run(ctx, b)
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				st := b.Stats()
				bridge.Logger().Info("stats", "state", b.State(), "frames", st.Frames, "resizes", st.Resizes, "drawn", l.Frames())
			}
		}
	})
	return g.Wait()
}
