// SPDX-License-Identifier: Unlicense OR MIT

package soft

import "golang.org/x/sys/unix"

// threadID identifies the calling OS thread, which EGL binds contexts
// to.
func threadID() int {
	return unix.Gettid()
}
