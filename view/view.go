// SPDX-License-Identifier: Unlicense OR MIT

/*
Package view renders OpenGL ES content into a native window on a
dedicated render thread.

A View is driven by its host: the window system reports surface
creation, resizing and destruction, and the application reports
pauses and resumes. The View turns these calls into commands for its
render thread, which owns the EGL display, context and surface and
calls the Renderer.

	v := view.New(native, view.ClientVersion(2))
	if err := v.SetRenderer(r); err != nil {
		...
	}
	v.SurfaceCreated(win)
	v.SurfaceChanged(0, width, height)
	...
	v.OnPause()
	v.SurfaceDestroyed()

OnPause and SurfaceDestroyed block until the render thread no longer
uses the window. The other calls return immediately and may be made
from any goroutine.
*/
package view

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/internal/log"
)

var (
	// ErrRendererSet is returned by configuration methods called
	// after SetRenderer, and by a second SetRenderer.
	ErrRendererSet = errors.New("view: renderer already set")
	// ErrNoRenderer is returned by QueueEvent before SetRenderer.
	ErrNoRenderer = errors.New("view: no renderer set")
	// ErrDetached is returned by QueueEvent while the View is
	// detached.
	ErrDetached = errors.New("view: detached")
	// ErrNilEvent is returned by QueueEvent for a nil function.
	ErrNilEvent = errors.New("view: nil event")
)

// View coordinates a Renderer with the lifecycle of its host.
type View struct {
	native egl.Native

	mu       sync.Mutex
	cfg      config
	renderer Renderer
	loop     *renderLoop
}

// New returns a View rendering through native.
func New(native egl.Native, opts ...Option) *View {
	v := &View{native: native}
	for _, o := range opts {
		o(&v.cfg)
	}
	return v
}

// SetLogger sets the logger of all glsurface packages. Nil disables
// logging, which is the default.
func SetLogger(l *slog.Logger) {
	log.SetLogger(l)
}

// configure applies fn to the configuration unless a renderer is
// set.
func (v *View) configure(fn func(c *config)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.renderer != nil {
		return ErrRendererSet
	}
	fn(&v.cfg)
	return nil
}

// SetPreserveContextOnPause keeps the context across pauses when the
// display supports more than one context.
func (v *View) SetPreserveContextOnPause(preserve bool) error {
	return v.configure(func(c *config) { c.preserve = preserve })
}

// PreserveContextOnPause reports the setting of
// SetPreserveContextOnPause.
func (v *View) PreserveContextOnPause() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg.preserve
}

// SetContextClientVersion sets the OpenGL ES version of the default
// context factory and config chooser.
func (v *View) SetContextClientVersion(version int) error {
	return v.configure(func(c *config) { c.clientVersion = version })
}

// SetConfigChooser replaces the config chooser. It overrides
// SetDepth and SetConfigSpec.
func (v *View) SetConfigChooser(ch ConfigChooser) error {
	return v.configure(func(c *config) {
		c.chooser = ch
		c.spec = nil
	})
}

// SetDepth chooses an RGB 8-8-8 config with a 16 bit depth buffer,
// or none if needDepth is false.
func (v *View) SetDepth(needDepth bool) error {
	spec := depthSpec(needDepth)
	return v.configure(func(c *config) {
		c.chooser = nil
		c.spec = &spec
	})
}

// SetConfigSpec chooses a config with exactly the given color
// channel sizes and at least the given depth and stencil sizes.
func (v *View) SetConfigSpec(red, green, blue, alpha, depth, stencil int) error {
	spec := egl.ChannelSpec(red, green, blue, alpha, depth, stencil)
	return v.configure(func(c *config) {
		c.chooser = nil
		c.spec = &spec
	})
}

// SetContextFactory replaces the factory creating and destroying
// contexts.
func (v *View) SetContextFactory(f ContextFactory) error {
	return v.configure(func(c *config) { c.contexts = f })
}

// SetWindowSurfaceFactory replaces the factory creating and
// destroying window surfaces.
func (v *View) SetWindowSurfaceFactory(f WindowSurfaceFactory) error {
	return v.configure(func(c *config) { c.surfaces = f })
}

// SetGLWrapper sets a function wrapping the GL functions handed to
// the Renderer.
func (v *View) SetGLWrapper(w GLWrapper) error {
	return v.configure(func(c *config) { c.wrapper = w })
}

// SetDebugFlags enables GL error checking and call logging.
func (v *View) SetDebugFlags(flags DebugFlags) error {
	return v.configure(func(c *config) { c.debug = flags })
}

// DebugFlags returns the flags set by SetDebugFlags.
func (v *View) DebugFlags() DebugFlags {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg.debug
}

// SetErrorHandler sets the function receiving recoverable errors.
// It is called on the render thread.
func (v *View) SetErrorHandler(h ErrorHandler) error {
	return v.configure(func(c *config) { c.onError = h })
}

// SetRenderMode sets the render mode. Unlike the other settings it
// may be changed after SetRenderer.
func (v *View) SetRenderMode(m RenderMode) error {
	if m != RenderWhenDirty && m != RenderContinuously {
		return fmt.Errorf("view: invalid render mode %d", m)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg.mode = m
	// Post under the lock to keep the loop in the order of cfg.mode.
	if v.loop != nil {
		v.loop.post(command{kind: cmdSetRenderMode, mode: m})
	}
	return nil
}

// RenderMode returns the current render mode.
func (v *View) RenderMode() RenderMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg.mode
}

// SetRenderer registers r and starts the render thread. It may be
// called once.
func (v *View) SetRenderer(r Renderer) error {
	if r == nil {
		return ErrNoRenderer
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.renderer != nil {
		return ErrRendererSet
	}
	v.cfg = v.cfg.withDefaults()
	v.renderer = r
	v.loop = newLoop(v.native, v.cfg, r)
	return nil
}

// Attach restarts the render thread after Detach. The host must
// report the surface again.
func (v *View) Attach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.renderer == nil || v.loop != nil {
		return
	}
	v.loop = newLoop(v.native, v.cfg, v.renderer)
}

// Detach shuts the render thread down, releasing the surface,
// context and display, and waits for it to exit. Queued events run
// before the thread exits.
func (v *View) Detach() {
	v.mu.Lock()
	l := v.loop
	v.loop = nil
	v.mu.Unlock()
	if l != nil {
		l.Release()
	}
}

func (v *View) renderLoop() *renderLoop {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loop
}

// OnPause pauses rendering and waits for the render thread to
// release the surface, and the context unless it is preserved.
func (v *View) OnPause() {
	if l := v.renderLoop(); l != nil {
		l.postWait(command{kind: cmdPause})
	}
}

// OnResume resumes rendering. Drawing restarts once a surface is
// available.
func (v *View) OnResume() {
	if l := v.renderLoop(); l != nil {
		l.post(command{kind: cmdResume})
	}
}

// SurfaceCreated reports a native window to draw into.
func (v *View) SurfaceCreated(win egl.NativeWindowType) {
	if l := v.renderLoop(); l != nil {
		l.post(command{kind: cmdSurfaceCreated, win: win})
	}
}

// SurfaceChanged reports the size of the window. The pixel format
// is decided by the config and format is ignored.
func (v *View) SurfaceChanged(format, width, height int) {
	if l := v.renderLoop(); l != nil {
		l.post(command{kind: cmdSurfaceChanged, width: width, height: height})
	}
}

// SurfaceDestroyed waits for the render thread to stop using the
// window. The window may be released when it returns.
func (v *View) SurfaceDestroyed() {
	if l := v.renderLoop(); l != nil {
		l.postWait(command{kind: cmdSurfaceDestroyed})
	}
}

// SurfaceRedrawNeeded requests a frame and waits until it is drawn,
// or until no frame can be drawn.
func (v *View) SurfaceRedrawNeeded() {
	done := make(chan struct{})
	v.SurfaceRedrawNeededAsync(func() { close(done) })
	<-done
}

// SurfaceRedrawNeededAsync requests a frame and calls finish once it
// is drawn, or once no frame can be drawn. finish is called on the
// render thread, or directly when there is none.
func (v *View) SurfaceRedrawNeededAsync(finish func()) {
	if finish == nil {
		finish = func() {}
	}
	l := v.renderLoop()
	if l == nil {
		finish()
		return
	}
	l.post(command{kind: cmdRedraw, fn: finish})
}

// RequestRender requests a frame in RenderWhenDirty mode.
func (v *View) RequestRender() {
	if l := v.renderLoop(); l != nil {
		l.post(command{kind: cmdRequestRender})
	}
}

// QueueEvent runs fn on the render thread, ordered with the frames
// and lifecycle commands around it. fn may call the GL functions
// given to the Renderer.
func (v *View) QueueEvent(fn func()) error {
	if fn == nil {
		return ErrNilEvent
	}
	v.mu.Lock()
	r, l := v.renderer, v.loop
	v.mu.Unlock()
	switch {
	case r == nil:
		return ErrNoRenderer
	case l == nil:
		return ErrDetached
	}
	if !l.post(command{kind: cmdQueueEvent, fn: fn}) {
		return ErrDetached
	}
	return nil
}
