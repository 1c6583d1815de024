// SPDX-License-Identifier: Unlicense OR MIT

package backend

import (
	"github.com/surfacepoc/texturebridge/config"
	"github.com/surfacepoc/texturebridge/render"
	"github.com/surfacepoc/texturebridge/soft"
)

func init() {
	Register(config.BackendSoft, func(_ config.Config, opts Options) (render.Backend, error) {
		return soft.New(soft.Options{Present: opts.Present}), nil
	})
}
