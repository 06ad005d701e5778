// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux && !windows

package soft

// threadID returns 0: all threads share one binding.
func threadID() int {
	return 0
}
