// SPDX-License-Identifier: Unlicense OR MIT

/*
Package bridge tracks the lifecycle of a host drawing surface and hands it to a
native renderer.

A Surface Host (an Android TextureView, an X11 window, a replayed script) reports
four events: the surface became available, it was resized, a frame was produced
and it was destroyed. A Bridge folds those events into a single Lifecycle and
decides, per event, whether the Renderer must be called.

The Renderer is initialized at most once for a given surface between the event
that made it available and the event that destroyed or replaced it. Whether an
event names a fresh surface or the current one is decided by SurfaceID equality,
never by Dimensions.

Events that arrive out of order are logged and ignored:

	b := bridge.New(renderer)
	if err := b.Resized(id, dims); errors.Is(err, bridge.ErrProtocolViolation) {
		// Nothing was forwarded to the renderer.
	}

Renderers that run on their own thread implement Detacher so that Destroyed
returns only after the renderer stopped using the surface.
*/
package bridge
