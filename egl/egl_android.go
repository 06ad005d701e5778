// SPDX-License-Identifier: Unlicense OR MIT

package egl

/*
#cgo LDFLAGS: -lEGL

#include <EGL/egl.h>
#include <EGL/eglext.h>
*/
import "C"

import (
	"unsafe"

	"gioui.org/glsurface/gles"
)

type nativeEGL struct{}

// Default returns the EGL implementation of the platform.
func Default() (Native, error) {
	return nativeEGL{}, nil
}

func cDisplay(d EGLDisplay) C.EGLDisplay { return C.EGLDisplay(unsafe.Pointer(d)) }
func cConfig(c EGLConfig) C.EGLConfig    { return C.EGLConfig(unsafe.Pointer(c)) }
func cContext(c EGLContext) C.EGLContext { return C.EGLContext(unsafe.Pointer(c)) }
func cSurface(s EGLSurface) C.EGLSurface { return C.EGLSurface(unsafe.Pointer(s)) }

func cAttribs(attribs []EGLint) *C.EGLint {
	return (*C.EGLint)(unsafe.Pointer(&attribs[0]))
}

func (nativeEGL) GetDisplay(disp NativeDisplayType) EGLDisplay {
	return EGLDisplay(unsafe.Pointer(C.eglGetDisplay(C.EGLNativeDisplayType(unsafe.Pointer(disp)))))
}

func (nativeEGL) Initialize(disp EGLDisplay) (EGLint, EGLint, bool) {
	var maj, min C.EGLint
	ret := C.eglInitialize(cDisplay(disp), &maj, &min)
	return EGLint(maj), EGLint(min), ret == C.EGL_TRUE
}

func (nativeEGL) Terminate(disp EGLDisplay) bool {
	return C.eglTerminate(cDisplay(disp)) == C.EGL_TRUE
}

func (nativeEGL) QueryString(disp EGLDisplay, name EGLint) string {
	return C.GoString(C.eglQueryString(cDisplay(disp), C.EGLint(name)))
}

func (nativeEGL) ChooseConfig(disp EGLDisplay, attribs []EGLint) ([]EGLConfig, bool) {
	var n C.EGLint
	if C.eglChooseConfig(cDisplay(disp), cAttribs(attribs), nil, 0, &n) != C.EGL_TRUE {
		return nil, false
	}
	if n == 0 {
		return nil, true
	}
	cfgs := make([]C.EGLConfig, n)
	if C.eglChooseConfig(cDisplay(disp), cAttribs(attribs), &cfgs[0], n, &n) != C.EGL_TRUE {
		return nil, false
	}
	res := make([]EGLConfig, n)
	for i := range res {
		res[i] = EGLConfig(unsafe.Pointer(cfgs[i]))
	}
	return res, true
}

func (nativeEGL) GetConfigAttrib(disp EGLDisplay, cfg EGLConfig, attr EGLint) (EGLint, bool) {
	var val C.EGLint
	ret := C.eglGetConfigAttrib(cDisplay(disp), cConfig(cfg), C.EGLint(attr), &val)
	return EGLint(val), ret == C.EGL_TRUE
}

func (nativeEGL) CreateContext(disp EGLDisplay, cfg EGLConfig, shareCtx EGLContext, attribs []EGLint) EGLContext {
	ctx := C.eglCreateContext(cDisplay(disp), cConfig(cfg), cContext(shareCtx), cAttribs(attribs))
	return EGLContext(unsafe.Pointer(ctx))
}

func (nativeEGL) DestroyContext(disp EGLDisplay, ctx EGLContext) bool {
	return C.eglDestroyContext(cDisplay(disp), cContext(ctx)) == C.EGL_TRUE
}

func (nativeEGL) CreateWindowSurface(disp EGLDisplay, cfg EGLConfig, win NativeWindowType, attribs []EGLint) EGLSurface {
	s := C.eglCreateWindowSurface(cDisplay(disp), cConfig(cfg), C.EGLNativeWindowType(unsafe.Pointer(win)), cAttribs(attribs))
	return EGLSurface(unsafe.Pointer(s))
}

func (nativeEGL) DestroySurface(disp EGLDisplay, surf EGLSurface) bool {
	return C.eglDestroySurface(cDisplay(disp), cSurface(surf)) == C.EGL_TRUE
}

func (nativeEGL) MakeCurrent(disp EGLDisplay, draw, read EGLSurface, ctx EGLContext) bool {
	return C.eglMakeCurrent(cDisplay(disp), cSurface(draw), cSurface(read), cContext(ctx)) == C.EGL_TRUE
}

func (nativeEGL) SwapBuffers(disp EGLDisplay, surf EGLSurface) bool {
	return C.eglSwapBuffers(cDisplay(disp), cSurface(surf)) == C.EGL_TRUE
}

func (nativeEGL) SwapInterval(disp EGLDisplay, interval EGLint) bool {
	return C.eglSwapInterval(cDisplay(disp), C.EGLint(interval)) == C.EGL_TRUE
}

func (nativeEGL) ReleaseThread() bool {
	return C.eglReleaseThread() == C.EGL_TRUE
}

func (nativeEGL) GetError() EGLint {
	return EGLint(C.eglGetError())
}

func (nativeEGL) Functions(disp EGLDisplay, ctx EGLContext) gles.Functions {
	return gles.Native()
}
