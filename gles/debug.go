// SPDX-License-Identifier: Unlicense OR MIT

package gles

import (
	"fmt"
	"log/slog"
)

// Error is the panic value of functions wrapped by CheckErrors
// when a call leaves a GL error behind.
type Error struct {
	Call string
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: glGetError 0x%x (%s)", e.Call, uint(e.Code), ErrorName(e.Code))
}

// CheckErrors wraps f so that glGetError is queried after every
// call. A call that leaves an error behind panics with an *Error.
func CheckErrors(f Functions) Functions {
	return checkedFunctions{f: f}
}

// LogCalls wraps f so that every call is written to l at debug
// level.
func LogCalls(f Functions, l *slog.Logger) Functions {
	return loggedFunctions{f: f, l: l}
}

type checkedFunctions struct {
	f Functions
}

func (c checkedFunctions) check(call string) {
	if code := c.f.GetError(); code != NO_ERROR {
		panic(&Error{Call: call, Code: code})
	}
}

func (c checkedFunctions) ClearColor(red, green, blue, alpha float32) {
	c.f.ClearColor(red, green, blue, alpha)
	c.check("glClearColor")
}

func (c checkedFunctions) Clear(mask Enum) {
	c.f.Clear(mask)
	c.check("glClear")
}

func (c checkedFunctions) Viewport(x, y, width, height int) {
	c.f.Viewport(x, y, width, height)
	c.check("glViewport")
}

func (c checkedFunctions) Flush() {
	c.f.Flush()
	c.check("glFlush")
}

func (c checkedFunctions) Finish() {
	c.f.Finish()
	c.check("glFinish")
}

func (c checkedFunctions) GetError() Enum {
	return c.f.GetError()
}

func (c checkedFunctions) GetString(pname Enum) string {
	s := c.f.GetString(pname)
	c.check("glGetString")
	return s
}

type loggedFunctions struct {
	f Functions
	l *slog.Logger
}

func (lf loggedFunctions) ClearColor(red, green, blue, alpha float32) {
	lf.l.Debug("glClearColor", "red", red, "green", green, "blue", blue, "alpha", alpha)
	lf.f.ClearColor(red, green, blue, alpha)
}

func (lf loggedFunctions) Clear(mask Enum) {
	lf.l.Debug("glClear", "mask", fmt.Sprintf("0x%x", uint(mask)))
	lf.f.Clear(mask)
}

func (lf loggedFunctions) Viewport(x, y, width, height int) {
	lf.l.Debug("glViewport", "x", x, "y", y, "width", width, "height", height)
	lf.f.Viewport(x, y, width, height)
}

func (lf loggedFunctions) Flush() {
	lf.l.Debug("glFlush")
	lf.f.Flush()
}

func (lf loggedFunctions) Finish() {
	lf.l.Debug("glFinish")
	lf.f.Finish()
}

func (lf loggedFunctions) GetError() Enum {
	code := lf.f.GetError()
	lf.l.Debug("glGetError", "result", ErrorName(code))
	return code
}

func (lf loggedFunctions) GetString(pname Enum) string {
	s := lf.f.GetString(pname)
	lf.l.Debug("glGetString", "pname", fmt.Sprintf("0x%x", uint(pname)), "result", s)
	return s
}
