// SPDX-License-Identifier: Unlicense OR MIT

//go:build !android && !windows

package egl

import (
	"fmt"
	"runtime"
)

// Default returns the EGL implementation of the platform.
func Default() (Native, error) {
	return nil, fmt.Errorf("%w: no EGL binding for %s", ErrDisplayUnavailable, runtime.GOOS)
}
