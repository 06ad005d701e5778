// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	syscall "golang.org/x/sys/windows"

	"gioui.org/glsurface/gles"
)

var (
	libEGL                  = syscall.DLL{}
	_eglChooseConfig        *syscall.Proc
	_eglCreateContext       *syscall.Proc
	_eglCreateWindowSurface *syscall.Proc
	_eglDestroyContext      *syscall.Proc
	_eglDestroySurface      *syscall.Proc
	_eglGetConfigAttrib     *syscall.Proc
	_eglGetDisplay          *syscall.Proc
	_eglGetError            *syscall.Proc
	_eglInitialize          *syscall.Proc
	_eglMakeCurrent         *syscall.Proc
	_eglReleaseThread       *syscall.Proc
	_eglSwapInterval        *syscall.Proc
	_eglSwapBuffers         *syscall.Proc
	_eglTerminate           *syscall.Proc
	_eglQueryString         *syscall.Proc
)

var (
	loadOnce sync.Once
	loadErr  error
)

type nativeEGL struct{}

// Default returns the EGL implementation of the platform, loading
// libEGL.dll on first use.
func Default() (Native, error) {
	loadOnce.Do(func() {
		loadErr = loadDLLs()
	})
	if loadErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayUnavailable, loadErr)
	}
	return nativeEGL{}, nil
}

func loadDLLs() error {
	if err := loadDLL(&libEGL, "libEGL.dll"); err != nil {
		return err
	}

	procs := map[string]**syscall.Proc{
		"eglChooseConfig":        &_eglChooseConfig,
		"eglCreateContext":       &_eglCreateContext,
		"eglCreateWindowSurface": &_eglCreateWindowSurface,
		"eglDestroyContext":      &_eglDestroyContext,
		"eglDestroySurface":      &_eglDestroySurface,
		"eglGetConfigAttrib":     &_eglGetConfigAttrib,
		"eglGetDisplay":          &_eglGetDisplay,
		"eglGetError":            &_eglGetError,
		"eglInitialize":          &_eglInitialize,
		"eglMakeCurrent":         &_eglMakeCurrent,
		"eglReleaseThread":       &_eglReleaseThread,
		"eglSwapInterval":        &_eglSwapInterval,
		"eglSwapBuffers":         &_eglSwapBuffers,
		"eglTerminate":           &_eglTerminate,
		"eglQueryString":         &_eglQueryString,
	}
	for name, proc := range procs {
		p, err := libEGL.FindProc(name)
		if err != nil {
			return fmt.Errorf("failed to locate %s in %s: %w", name, libEGL.Name, err)
		}
		*proc = p
	}
	return nil
}

func loadDLL(dll *syscall.DLL, name string) error {
	handle, err := syscall.LoadLibraryEx(name, 0, syscall.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	if err != nil {
		return fmt.Errorf("egl: failed to load %s: %v", name, err)
	}
	dll.Handle = handle
	dll.Name = name
	return nil
}

func (nativeEGL) GetDisplay(disp NativeDisplayType) EGLDisplay {
	d, _, _ := _eglGetDisplay.Call(uintptr(disp))
	return EGLDisplay(d)
}

func (nativeEGL) Initialize(disp EGLDisplay) (EGLint, EGLint, bool) {
	var maj, min uintptr
	r, _, _ := _eglInitialize.Call(uintptr(disp), uintptr(unsafe.Pointer(&maj)), uintptr(unsafe.Pointer(&min)))
	return EGLint(maj), EGLint(min), r != 0
}

func (nativeEGL) Terminate(disp EGLDisplay) bool {
	r, _, _ := _eglTerminate.Call(uintptr(disp))
	return r != 0
}

func (nativeEGL) QueryString(disp EGLDisplay, name EGLint) string {
	r, _, _ := _eglQueryString.Call(uintptr(disp), uintptr(name))
	if r == 0 {
		return ""
	}
	return syscall.BytePtrToString((*byte)(unsafe.Pointer(r)))
}

func (nativeEGL) ChooseConfig(disp EGLDisplay, attribs []EGLint) ([]EGLConfig, bool) {
	var n EGLint
	a := &attribs[0]
	r, _, _ := _eglChooseConfig.Call(uintptr(disp), uintptr(unsafe.Pointer(a)), 0, 0, uintptr(unsafe.Pointer(&n)))
	if r == 0 {
		issue34474KeepAlive(a)
		return nil, false
	}
	if n == 0 {
		issue34474KeepAlive(a)
		return nil, true
	}
	cfgs := make([]EGLConfig, n)
	r, _, _ = _eglChooseConfig.Call(uintptr(disp), uintptr(unsafe.Pointer(a)), uintptr(unsafe.Pointer(&cfgs[0])), uintptr(n), uintptr(unsafe.Pointer(&n)))
	issue34474KeepAlive(a)
	if r == 0 {
		return nil, false
	}
	return cfgs[:n], true
}

func (nativeEGL) GetConfigAttrib(disp EGLDisplay, cfg EGLConfig, attr EGLint) (EGLint, bool) {
	var val uintptr
	r, _, _ := _eglGetConfigAttrib.Call(uintptr(disp), uintptr(cfg), uintptr(attr), uintptr(unsafe.Pointer(&val)))
	return EGLint(val), r != 0
}

func (nativeEGL) CreateContext(disp EGLDisplay, cfg EGLConfig, shareCtx EGLContext, attribs []EGLint) EGLContext {
	a := &attribs[0]
	c, _, _ := _eglCreateContext.Call(uintptr(disp), uintptr(cfg), uintptr(shareCtx), uintptr(unsafe.Pointer(a)))
	issue34474KeepAlive(a)
	return EGLContext(c)
}

func (nativeEGL) DestroyContext(disp EGLDisplay, ctx EGLContext) bool {
	r, _, _ := _eglDestroyContext.Call(uintptr(disp), uintptr(ctx))
	return r != 0
}

func (nativeEGL) CreateWindowSurface(disp EGLDisplay, cfg EGLConfig, win NativeWindowType, attribs []EGLint) EGLSurface {
	a := &attribs[0]
	s, _, _ := _eglCreateWindowSurface.Call(uintptr(disp), uintptr(cfg), uintptr(win), uintptr(unsafe.Pointer(a)))
	issue34474KeepAlive(a)
	return EGLSurface(s)
}

func (nativeEGL) DestroySurface(disp EGLDisplay, surf EGLSurface) bool {
	r, _, _ := _eglDestroySurface.Call(uintptr(disp), uintptr(surf))
	return r != 0
}

func (nativeEGL) MakeCurrent(disp EGLDisplay, draw, read EGLSurface, ctx EGLContext) bool {
	r, _, _ := _eglMakeCurrent.Call(uintptr(disp), uintptr(draw), uintptr(read), uintptr(ctx))
	return r != 0
}

func (nativeEGL) SwapBuffers(disp EGLDisplay, surf EGLSurface) bool {
	r, _, _ := _eglSwapBuffers.Call(uintptr(disp), uintptr(surf))
	return r != 0
}

func (nativeEGL) SwapInterval(disp EGLDisplay, interval EGLint) bool {
	r, _, _ := _eglSwapInterval.Call(uintptr(disp), uintptr(interval))
	return r != 0
}

func (nativeEGL) ReleaseThread() bool {
	r, _, _ := _eglReleaseThread.Call()
	return r != 0
}

func (nativeEGL) GetError() EGLint {
	e, _, _ := _eglGetError.Call()
	return EGLint(e)
}

func (nativeEGL) Functions(disp EGLDisplay, ctx EGLContext) gles.Functions {
	return gles.Native()
}

// issue34474KeepAlive calls runtime.KeepAlive as a
// workaround for golang.org/issue/34474.
func issue34474KeepAlive(v any) {
	runtime.KeepAlive(v)
}
