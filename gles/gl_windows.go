// SPDX-License-Identifier: Unlicense OR MIT

package gles

import (
	"math"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

var (
	libGLESv2     = syscall.NewLazyDLL("libGLESv2.dll")
	_glClear      = libGLESv2.NewProc("glClear")
	_glClearColor = libGLESv2.NewProc("glClearColor")
	_glFinish     = libGLESv2.NewProc("glFinish")
	_glFlush      = libGLESv2.NewProc("glFlush")
	_glGetError   = libGLESv2.NewProc("glGetError")
	_glGetString  = libGLESv2.NewProc("glGetString")
	_glViewport   = libGLESv2.NewProc("glViewport")
)

type nativeFunctions struct{}

// Native returns the functions of libGLESv2.dll.
func Native() Functions {
	return nativeFunctions{}
}

func (nativeFunctions) ClearColor(red, green, blue, alpha float32) {
	_glClearColor.Call(uintptr(math.Float32bits(red)), uintptr(math.Float32bits(green)), uintptr(math.Float32bits(blue)), uintptr(math.Float32bits(alpha)))
}

func (nativeFunctions) Clear(mask Enum) {
	_glClear.Call(uintptr(mask))
}

func (nativeFunctions) Viewport(x, y, width, height int) {
	_glViewport.Call(uintptr(x), uintptr(y), uintptr(width), uintptr(height))
}

func (nativeFunctions) Flush() {
	_glFlush.Call()
}

func (nativeFunctions) Finish() {
	_glFinish.Call()
}

func (nativeFunctions) GetError() Enum {
	e, _, _ := _glGetError.Call()
	return Enum(e)
}

func (nativeFunctions) GetString(pname Enum) string {
	s, _, _ := _glGetString.Call(uintptr(pname))
	if s == 0 {
		return ""
	}
	return syscall.BytePtrToString((*byte)(unsafe.Pointer(s)))
}
