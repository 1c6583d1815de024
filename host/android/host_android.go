// SPDX-License-Identifier: Unlicense OR MIT

package android

/*
#cgo LDFLAGS: -landroid

#include <jni.h>
#include <stdlib.h>
#include <android/native_window.h>
#include <android/surface_texture.h>
#include <android/surface_texture_jni.h>

static jobject tb_jni_NewGlobalRef(JNIEnv *env, jobject obj) {
	return (*env)->NewGlobalRef(env, obj);
}

static void tb_jni_DeleteGlobalRef(JNIEnv *env, jobject obj) {
	(*env)->DeleteGlobalRef(env, obj);
}

static jboolean tb_jni_IsSameObject(JNIEnv *env, jobject a, jobject b) {
	return (*env)->IsSameObject(env, a, b);
}

static const char *tb_jni_GetStringUTFChars(JNIEnv *env, jstring str) {
	return (*env)->GetStringUTFChars(env, str, NULL);
}

static void tb_jni_ReleaseStringUTFChars(JNIEnv *env, jstring str, const char *chars) {
	(*env)->ReleaseStringUTFChars(env, str, chars);
}
*/
import "C"

import (
	"log/slog"
	"unsafe"

	"golang.org/x/exp/slices"

	"github.com/surfacepoc/texturebridge/backend"
	"github.com/surfacepoc/texturebridge/bridge"
	"github.com/surfacepoc/texturebridge/config"
	"github.com/surfacepoc/texturebridge/internal/log"
	"github.com/surfacepoc/texturebridge/render"
)

// surface is a SurfaceTexture known to the host.
type surface struct {
	ref C.jobject
	st  *C.ASurfaceTexture
	win *C.ANativeWindow
	id  bridge.SurfaceID
}

// All callbacks arrive on the UI thread, so the host state needs no lock.
var (
	theBridge *bridge.Bridge
	theLoop   *render.Loop
	surfaces  []*surface
)

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeInit
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeInit(env *C.JNIEnv, class C.jclass, jpath C.jstring) (ok C.jboolean) {
	defer recoverTo(&ok, "init")
	if theBridge != nil {
		return C.JNI_TRUE
	}
	c := config.Default()
	if path := goString(env, jpath); path != "" {
		var err error
		if c, err = config.Load(path); err != nil {
			slog.Error("texturebridge: load config", "path", path, "err", err)
			return C.JNI_FALSE
		}
	}
	lvl, _ := c.Log.SlogLevel()
	bridge.SetLogger(slog.New(log.NewLogcatHandler(&slog.HandlerOptions{Level: lvl})))
	b, l, err := backend.Start(c, backend.Options{})
	if err != nil {
		bridge.Logger().Error("start backend", "backend", c.Backend, "err", err)
		return C.JNI_FALSE
	}
	theBridge, theLoop = b, l
	return C.JNI_TRUE
}

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeShutdown
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeShutdown(env *C.JNIEnv, class C.jclass) {
	var ok C.jboolean
	defer recoverTo(&ok, "shutdown")
	if theLoop == nil {
		return
	}
	// Surfaces still alive are detached by Release before they are freed.
	theLoop.Release()
	for _, s := range surfaces {
		s.release(env)
	}
	surfaces = nil
	theBridge, theLoop = nil, nil
}

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeAvailable
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeAvailable(env *C.JNIEnv, class C.jclass, st C.jobject, width, height C.jint) (ok C.jboolean) {
	defer recoverTo(&ok, "available")
	if theBridge == nil {
		return C.JNI_FALSE
	}
	s := acquire(env, st)
	if s == nil {
		return C.JNI_FALSE
	}
	if err := theBridge.Available(s.id, dims(width, height)); err != nil {
		return C.JNI_FALSE
	}
	return C.JNI_TRUE
}

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeResized
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeResized(env *C.JNIEnv, class C.jclass, st C.jobject, width, height C.jint) {
	var ok C.jboolean
	defer recoverTo(&ok, "resized")
	if theBridge == nil {
		return
	}
	s := lookup(env, st)
	if s == nil && acquireOnResize(theBridge.State()) {
		// The bridge rebinds the renderer to the new SurfaceTexture.
		s = acquire(env, st)
	}
	var id bridge.SurfaceID
	if s != nil {
		id = s.id
	}
	theBridge.Resized(id, dims(width, height))
}

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeUpdated
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeUpdated(env *C.JNIEnv, class C.jclass, st C.jobject) {
	var ok C.jboolean
	defer recoverTo(&ok, "updated")
	if theBridge == nil {
		return
	}
	var id bridge.SurfaceID
	if s := lookup(env, st); s != nil {
		id = s.id
	}
	theBridge.Updated(id)
}

//export Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeDestroyed
func Java_com_surfacepoc_texturebridge_SurfaceBridge_nativeDestroyed(env *C.JNIEnv, class C.jclass, st C.jobject) (ok C.jboolean) {
	// The SurfaceTexture is released by the caller unless told otherwise.
	ok = C.JNI_TRUE
	defer recoverTo(&ok, "destroyed")
	if theBridge == nil {
		return C.JNI_TRUE
	}
	i := index(env, st)
	if i == -1 {
		theBridge.Destroyed(0)
		return C.JNI_TRUE
	}
	s := surfaces[i]
	release := theBridge.Destroyed(s.id)
	// The renderer no longer uses the window.
	s.release(env)
	surfaces = slices.Delete(surfaces, i, i+1)
	if release {
		return C.JNI_TRUE
	}
	return C.JNI_FALSE
}

func index(env *C.JNIEnv, st C.jobject) int {
	return slices.IndexFunc(surfaces, func(s *surface) bool {
		return C.tb_jni_IsSameObject(env, s.ref, st) == C.JNI_TRUE
	})
}

func lookup(env *C.JNIEnv, st C.jobject) *surface {
	if i := index(env, st); i != -1 {
		return surfaces[i]
	}
	return nil
}

// acquire returns the known surface for st or creates one.
func acquire(env *C.JNIEnv, st C.jobject) *surface {
	if s := lookup(env, st); s != nil {
		return s
	}
	ast := C.ASurfaceTexture_fromSurfaceTexture(env, st)
	if ast == nil {
		bridge.Logger().Warn("android: not a SurfaceTexture")
		return nil
	}
	win := C.ASurfaceTexture_acquireANativeWindow(ast)
	if win == nil {
		C.ASurfaceTexture_release(ast)
		bridge.Logger().Warn("android: no native window for SurfaceTexture")
		return nil
	}
	s := &surface{
		ref: C.tb_jni_NewGlobalRef(env, st),
		st:  ast,
		win: win,
		id:  bridge.SurfaceID(uintptr(unsafe.Pointer(win))),
	}
	surfaces = append(surfaces, s)
	return s
}

func (s *surface) release(env *C.JNIEnv) {
	C.ANativeWindow_release(s.win)
	C.ASurfaceTexture_release(s.st)
	C.tb_jni_DeleteGlobalRef(env, s.ref)
}

func dims(width, height C.jint) bridge.Dimensions {
	if width < 0 || height < 0 {
		return bridge.Dimensions{}
	}
	return bridge.Dimensions{Width: uint32(width), Height: uint32(height)}
}

func goString(env *C.JNIEnv, str C.jstring) string {
	if str == 0 {
		return ""
	}
	chars := C.tb_jni_GetStringUTFChars(env, str)
	if chars == nil {
		return ""
	}
	defer C.tb_jni_ReleaseStringUTFChars(env, str, chars)
	return C.GoString(chars)
}

// recoverTo keeps Go panics from unwinding into the JVM.
func recoverTo(ok *C.jboolean, event string) {
	if r := recover(); r != nil {
		bridge.Logger().Error("android: panic in host callback", "event", event, "panic", r)
		*ok = C.JNI_FALSE
	}
}
