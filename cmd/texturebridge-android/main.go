// SPDX-License-Identifier: Unlicense OR MIT

//go:build android

// Command texturebridge-android builds libtexturebridge.so for SurfaceBridge.java:
//
//	CGO_ENABLED=1 GOOS=android GOARCH=arm64 CC=$NDK_CC \
//		go build -buildmode=c-shared -o libtexturebridge.so ./cmd/texturebridge-android
package main

import _ "github.com/surfacepoc/texturebridge/host/android"

func main() {}
