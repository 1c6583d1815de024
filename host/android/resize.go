// SPDX-License-Identifier: Unlicense OR MIT

package android

import "github.com/surfacepoc/texturebridge/bridge"

// acquireOnResize reports whether a resize naming an unknown SurfaceTexture
// acquires a native window for it. Only an available bridge rebinds to
// another surface; in any other state the event is ignored and nothing
// would release the window.
func acquireOnResize(s bridge.State) bool {
	return s == bridge.StateAvailable
}
