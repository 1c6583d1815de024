// SPDX-License-Identifier: Unlicense OR MIT

/*
Package android is the Surface Host for an Android TextureView.

SurfaceBridge.java forwards the TextureView.SurfaceTextureListener callbacks
to the JNI functions exported here. Each distinct SurfaceTexture gets an
ANativeWindow; its pointer is the SurfaceID handed to the renderer, and it is
released only after the bridge returned from Destroyed.

Link the package into a c-shared library loaded by the application, see
cmd/texturebridge-android.
*/
package android
