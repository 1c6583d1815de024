// SPDX-License-Identifier: Unlicense OR MIT

// Command surfacectl drives the surface bridge outside of Android.
//
// Usage:
//
//	surfacectl replay [-config file] [-snapshot out.png] script
//	surfacectl x11 [-config file]
//	surfacectl check [-config file]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/config"
)

// Version is set at build time.
var Version = "devel"

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "replay":
		err = runReplay(rest)
	case "x11":
		err = runX11(rest)
	case "check":
		err = runCheck(rest)
	case "version":
		fmt.Println(Version)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		log.Fatalf("surfacectl: %v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `surfacectl %s drives the surface lifecycle bridge.

Commands:
  replay [-config file] [-backend name] [-snapshot out.png] script
        replay host events from a script file ("-" for stdin)
  x11 [-config file]
        render into an X11 window
  check [-config file]
        validate a configuration and print it
  version
        print the version
`, Version)
}

// loadConfig returns the configuration at path, or the defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setupLogger installs a text handler on terminals and a JSON handler
// otherwise.
func setupLogger(c config.Config) {
	lvl, err := c.Log.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	bridge.SetLogger(slog.New(h))
}
