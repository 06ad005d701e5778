// SPDX-License-Identifier: Unlicense OR MIT

package gles

/*
#cgo CFLAGS: -Werror
#cgo LDFLAGS: -lGLESv2

#include <GLES2/gl2.h>
*/
import "C"

import "unsafe"

type nativeFunctions struct{}

// Native returns the functions of the system OpenGL ES library.
func Native() Functions {
	return nativeFunctions{}
}

func (nativeFunctions) ClearColor(red, green, blue, alpha float32) {
	C.glClearColor(C.GLfloat(red), C.GLfloat(green), C.GLfloat(blue), C.GLfloat(alpha))
}

func (nativeFunctions) Clear(mask Enum) {
	C.glClear(C.GLbitfield(mask))
}

func (nativeFunctions) Viewport(x, y, width, height int) {
	C.glViewport(C.GLint(x), C.GLint(y), C.GLsizei(width), C.GLsizei(height))
}

func (nativeFunctions) Flush() {
	C.glFlush()
}

func (nativeFunctions) Finish() {
	C.glFinish()
}

func (nativeFunctions) GetError() Enum {
	return Enum(C.glGetError())
}

func (nativeFunctions) GetString(pname Enum) string {
	str := C.glGetString(C.GLenum(pname))
	if str == nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(str)))
}
