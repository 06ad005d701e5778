// SPDX-License-Identifier: Unlicense OR MIT

// Package egl manages EGL displays, framebuffer configurations,
// rendering contexts and window surfaces.
//
// The package talks to EGL through the Native interface. Default
// returns the platform implementation; package soft provides an
// in-memory one.
package egl

import "gioui.org/glsurface/gles"

type (
	EGLint     int32
	EGLDisplay uintptr
	EGLConfig  uintptr
	EGLContext uintptr
	EGLSurface uintptr

	NativeDisplayType uintptr
	NativeWindowType  uintptr
)

const (
	DefaultDisplay NativeDisplayType = 0

	NoDisplay EGLDisplay       = 0
	NoConfig  EGLConfig        = 0
	NoContext EGLContext       = 0
	NoSurface EGLSurface       = 0
	NoWindow  NativeWindowType = 0
)

// Native is the EGL entry point set. Its methods follow the C API:
// failures are reported through return values and the error code
// of the next GetError call.
type Native interface {
	GetDisplay(display NativeDisplayType) EGLDisplay
	Initialize(disp EGLDisplay) (major, minor EGLint, ok bool)
	Terminate(disp EGLDisplay) bool
	QueryString(disp EGLDisplay, name EGLint) string
	// ChooseConfig returns every config matching attribs, in the
	// implementation's preference order. The attribute list is
	// terminated by NONE.
	ChooseConfig(disp EGLDisplay, attribs []EGLint) ([]EGLConfig, bool)
	GetConfigAttrib(disp EGLDisplay, cfg EGLConfig, attr EGLint) (EGLint, bool)
	CreateContext(disp EGLDisplay, cfg EGLConfig, shareCtx EGLContext, attribs []EGLint) EGLContext
	DestroyContext(disp EGLDisplay, ctx EGLContext) bool
	CreateWindowSurface(disp EGLDisplay, cfg EGLConfig, win NativeWindowType, attribs []EGLint) EGLSurface
	DestroySurface(disp EGLDisplay, surf EGLSurface) bool
	MakeCurrent(disp EGLDisplay, draw, read EGLSurface, ctx EGLContext) bool
	SwapBuffers(disp EGLDisplay, surf EGLSurface) bool
	SwapInterval(disp EGLDisplay, interval EGLint) bool
	ReleaseThread() bool
	GetError() EGLint
	// Functions returns the GL ES functions that operate on ctx
	// while it is current.
	Functions(disp EGLDisplay, ctx EGLContext) gles.Functions
}

// ContextCapabilities is implemented by Native implementations that
// know whether a display can keep more than one context alive at a
// time.
type ContextCapabilities interface {
	MultipleContexts(disp EGLDisplay) bool
}
