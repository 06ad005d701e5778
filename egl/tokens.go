// SPDX-License-Identifier: Unlicense OR MIT

package egl

// EGL tokens, as defined by EGL/egl.h and EGL/eglext.h.
const (
	FALSE = 0
	TRUE  = 1

	SUCCESS             = 0x3000
	NOT_INITIALIZED     = 0x3001
	BAD_ACCESS          = 0x3002
	BAD_ALLOC           = 0x3003
	BAD_ATTRIBUTE       = 0x3004
	BAD_CONFIG          = 0x3005
	BAD_CONTEXT         = 0x3006
	BAD_CURRENT_SURFACE = 0x3007
	BAD_DISPLAY         = 0x3008
	BAD_MATCH           = 0x3009
	BAD_NATIVE_PIXMAP   = 0x300a
	BAD_NATIVE_WINDOW   = 0x300b
	BAD_PARAMETER       = 0x300c
	BAD_SURFACE         = 0x300d
	CONTEXT_LOST        = 0x300e

	BUFFER_SIZE      = 0x3020
	ALPHA_SIZE       = 0x3021
	BLUE_SIZE        = 0x3022
	GREEN_SIZE       = 0x3023
	RED_SIZE         = 0x3024
	DEPTH_SIZE       = 0x3025
	STENCIL_SIZE     = 0x3026
	CONFIG_CAVEAT    = 0x3027
	CONFIG_ID        = 0x3028
	NATIVE_VISUAL_ID = 0x302e
	SAMPLES          = 0x3031
	SAMPLE_BUFFERS   = 0x3032
	SURFACE_TYPE     = 0x3033
	NONE             = 0x3038
	RENDERABLE_TYPE  = 0x3040

	VENDOR      = 0x3053
	VERSION     = 0x3054
	EXTENSIONS  = 0x3055
	CLIENT_APIS = 0x308d

	CONTEXT_CLIENT_VERSION = 0x3098
	GL_COLORSPACE_KHR      = 0x309d
	GL_COLORSPACE_SRGB_KHR = 0x3089

	PBUFFER_BIT = 0x1
	PIXMAP_BIT  = 0x2
	WINDOW_BIT  = 0x4

	OPENGL_ES_BIT      = 0x1
	OPENVG_BIT         = 0x2
	OPENGL_ES2_BIT     = 0x4
	OPENGL_BIT         = 0x8
	OPENGL_ES3_BIT_KHR = 0x40

	DONT_CARE = -1
)

// CodeName returns the symbolic name of an eglGetError code.
func CodeName(code EGLint) string {
	switch code {
	case SUCCESS:
		return "EGL_SUCCESS"
	case NOT_INITIALIZED:
		return "EGL_NOT_INITIALIZED"
	case BAD_ACCESS:
		return "EGL_BAD_ACCESS"
	case BAD_ALLOC:
		return "EGL_BAD_ALLOC"
	case BAD_ATTRIBUTE:
		return "EGL_BAD_ATTRIBUTE"
	case BAD_CONFIG:
		return "EGL_BAD_CONFIG"
	case BAD_CONTEXT:
		return "EGL_BAD_CONTEXT"
	case BAD_CURRENT_SURFACE:
		return "EGL_BAD_CURRENT_SURFACE"
	case BAD_DISPLAY:
		return "EGL_BAD_DISPLAY"
	case BAD_MATCH:
		return "EGL_BAD_MATCH"
	case BAD_NATIVE_PIXMAP:
		return "EGL_BAD_NATIVE_PIXMAP"
	case BAD_NATIVE_WINDOW:
		return "EGL_BAD_NATIVE_WINDOW"
	case BAD_PARAMETER:
		return "EGL_BAD_PARAMETER"
	case BAD_SURFACE:
		return "EGL_BAD_SURFACE"
	case CONTEXT_LOST:
		return "EGL_CONTEXT_LOST"
	default:
		return "unknown"
	}
}
