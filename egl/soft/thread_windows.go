// SPDX-License-Identifier: Unlicense OR MIT

package soft

import "golang.org/x/sys/windows"

func threadID() int {
	return int(windows.GetCurrentThreadId())
}
