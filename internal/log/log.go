// SPDX-License-Identifier: Unlicense OR MIT

// Package log holds the logger shared by the glsurface packages.
// Nothing is logged until SetLogger installs a logger.
package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the shared logger. A nil logger disables
// logging.
//
// Levels in use:
//   - Debug: render thread state transitions and GL call tracing.
//   - Info: EGL display and context lifecycle.
//   - Warn: recoverable failures such as context loss.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the shared logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Load()
}
