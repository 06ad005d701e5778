// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"errors"
	"fmt"
)

// Surface is an EGL window surface bound to one native window. Its
// lifetime is independent of any context, but drawing to it requires
// a compatible current context.
type Surface struct {
	env    *Environment
	config *SurfaceConfig
	handle EGLSurface
	window NativeWindowType

	// Guarded by currentMu.
	thread    *Thread
	destroyed bool
}

// CreateWindowSurface creates a surface for the native window win.
// Failures wrap ErrSurfaceCreationFailed and are not fatal: the
// caller should retry once the window is valid again.
func CreateWindowSurface(env *Environment, cfg *SurfaceConfig, win NativeWindowType, attribs Attribs) (*Surface, error) {
	if err := env.check(); err != nil {
		return nil, err
	}
	if win == NoWindow {
		return nil, &Error{Op: "eglCreateWindowSurface", Code: BAD_NATIVE_WINDOW, Kind: ErrSurfaceCreationFailed}
	}
	h := env.native.CreateWindowSurface(env.disp, cfg.handle, win, attribs.list())
	if h == NoSurface {
		return nil, lastError(env.native, "eglCreateWindowSurface", ErrSurfaceCreationFailed)
	}
	return &Surface{
		env:    env,
		config: cfg,
		handle: h,
		window: win,
	}, nil
}

func (s *Surface) Handle() EGLSurface {
	return s.handle
}

func (s *Surface) Window() NativeWindowType {
	return s.window
}

func (s *Surface) Config() *SurfaceConfig {
	return s.config
}

// Destroy releases the surface, unbinding it first if it is current.
// It must be called before the native window is released. Destroying
// a destroyed surface does nothing. The surface is destroyed even if
// unbinding it fails.
func (s *Surface) Destroy() error {
	currentMu.Lock()
	defer currentMu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	var err error
	if s.thread != nil {
		err = s.thread.releaseLocked()
	}
	if !s.env.alive() {
		return err
	}
	if !s.env.native.DestroySurface(s.env.disp, s.handle) {
		return errors.Join(err, fmt.Errorf("eglDestroySurface failed: 0x%x", s.env.native.GetError()))
	}
	return err
}

// SwapBuffers presents the back buffer. ErrContextLost means the
// current context is gone; ErrBadSurface means the surface or its
// window is no longer valid and a new surface is needed.
func (s *Surface) SwapBuffers() error {
	currentMu.Lock()
	destroyed := s.destroyed
	currentMu.Unlock()
	if destroyed || !s.env.alive() {
		return &Error{Op: "eglSwapBuffers", Code: BAD_SURFACE, Kind: ErrBadSurface}
	}
	if s.env.native.SwapBuffers(s.env.disp, s.handle) {
		return nil
	}
	err := lastError(s.env.native, "eglSwapBuffers", ErrSwapFailed)
	switch err.Code {
	case CONTEXT_LOST:
		err.Kind = ErrContextLost
	case BAD_SURFACE, BAD_NATIVE_WINDOW, BAD_CURRENT_SURFACE:
		err.Kind = ErrBadSurface
	}
	return err
}

// SwapInterval sets the minimum number of vertical refreshes between
// buffer swaps of the current surface.
func (s *Surface) SwapInterval(interval int) bool {
	return s.env.native.SwapInterval(s.env.disp, EGLint(interval))
}
