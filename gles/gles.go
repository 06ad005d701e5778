// SPDX-License-Identifier: Unlicense OR MIT

// Package gles exposes the OpenGL ES entry points handed to renderers
// by the render thread.
package gles

type Enum uint

const (
	COLOR_BUFFER_BIT              = 0x4000
	CONTEXT_LOST                  = 0x0507
	DEPTH_BUFFER_BIT              = 0x100
	EXTENSIONS                    = 0x1f03
	INVALID_ENUM                  = 0x500
	INVALID_FRAMEBUFFER_OPERATION = 0x506
	INVALID_OPERATION             = 0x502
	INVALID_VALUE                 = 0x501
	NO_ERROR                      = 0x0
	OUT_OF_MEMORY                 = 0x505
	RENDERER                      = 0x1f01
	SHADING_LANGUAGE_VERSION      = 0x8b8c
	STENCIL_BUFFER_BIT            = 0x400
	VENDOR                        = 0x1f00
	VERSION                       = 0x1f02
)

// Functions is the subset of OpenGL ES available to renderers. The
// functions are only valid on the thread where their context is
// current.
type Functions interface {
	ClearColor(red, green, blue, alpha float32)
	Clear(mask Enum)
	Viewport(x, y, width, height int)
	Flush()
	Finish()
	GetError() Enum
	GetString(pname Enum) string
}

// ErrorName returns the symbolic name of a glGetError code.
func ErrorName(code Enum) string {
	switch code {
	case NO_ERROR:
		return "GL_NO_ERROR"
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case CONTEXT_LOST:
		return "GL_CONTEXT_LOST"
	default:
		return "unknown"
	}
}
