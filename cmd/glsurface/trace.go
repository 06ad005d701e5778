// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"sync"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/gles"
)

// traceRenderer clears every frame to a new color and records the
// callbacks it receives.
type traceRenderer struct {
	// tick is signalled after every frame.
	tick chan struct{}

	mu     sync.Mutex
	events []string
	frames int
}

func newTraceRenderer() *traceRenderer {
	return &traceRenderer{tick: make(chan struct{}, 1)}
}

func (r *traceRenderer) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *traceRenderer) OnSurfaceCreated(gl gles.Functions, cfg *egl.SurfaceConfig) {
	r.record("surface created: %v (%s)", cfg, gl.GetString(gles.VERSION))
}

func (r *traceRenderer) OnSurfaceChanged(gl gles.Functions, width, height int) {
	gl.Viewport(0, 0, width, height)
	r.record("surface changed: %dx%d", width, height)
}

func (r *traceRenderer) OnDrawFrame(gl gles.Functions) {
	r.mu.Lock()
	r.frames++
	n := r.frames
	r.mu.Unlock()
	c := palette[n%len(palette)]
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gles.COLOR_BUFFER_BIT)
	r.record("draw frame %d", n)
	select {
	case r.tick <- struct{}{}:
	default:
	}
}

var palette = [...][3]float32{
	{0.9, 0.3, 0.2},
	{0.2, 0.7, 0.3},
	{0.2, 0.4, 0.9},
}

// Frames returns the number of frames drawn.
func (r *traceRenderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Events returns the recorded callbacks.
func (r *traceRenderer) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
