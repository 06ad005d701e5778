// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"errors"
	"fmt"
)

var (
	ErrDisplayUnavailable    = errors.New("egl: display unavailable")
	ErrInitializationFailed  = errors.New("egl: initialization failed")
	ErrNotInitialized        = errors.New("egl: display not initialized")
	ErrTerminated            = errors.New("egl: display terminated")
	ErrNoMatchingConfig      = errors.New("egl: no matching config")
	ErrContextCreationFailed = errors.New("egl: context creation failed")
	ErrContextStillCurrent   = errors.New("egl: context is still current")
	ErrMakeCurrentFailed     = errors.New("egl: make current failed")
	ErrContextLost           = errors.New("egl: context lost")
	ErrSurfaceCreationFailed = errors.New("egl: surface creation failed")
	ErrBadSurface            = errors.New("egl: surface no longer valid")
	ErrSwapFailed            = errors.New("egl: swap buffers failed")
)

// Error describes a failed EGL call. Kind is one of the Err
// sentinels in this package and is what errors.Is matches.
type Error struct {
	Op   string
	Code EGLint
	Kind error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s failed: 0x%x (%s)", e.Kind, e.Op, e.Code, CodeName(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// lastError collects the EGL error code of a failed call.
func lastError(n Native, op string, kind error) *Error {
	return &Error{Op: op, Code: n.GetError(), Kind: kind}
}
