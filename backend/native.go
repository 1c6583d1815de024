// SPDX-License-Identifier: Unlicense OR MIT

//go:build darwin || freebsd || linux

package backend

import (
	"github.com/surfacepoc/texturebridge/config"
	"github.com/surfacepoc/texturebridge/native"
	"github.com/surfacepoc/texturebridge/render"
)

func init() {
	Register(config.BackendNative, func(c config.Config, _ Options) (render.Backend, error) {
		return native.Open(native.Config{Path: c.Native.Path, Prefix: c.Native.Prefix})
	})
}
