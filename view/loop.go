// SPDX-License-Identifier: Unlicense OR MIT

package view

import (
	"errors"
	"fmt"
	"runtime"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/gles"
	"gioui.org/glsurface/internal/log"
)

type state uint8

const (
	stateStopped state = iota
	stateRunning
	statePaused
)

// renderLoop is the render thread of a View. Every EGL and GL call,
// and every Renderer callback, happens on its goroutine.
type renderLoop struct {
	cfg      config
	native   egl.Native
	renderer Renderer

	queue   *queue
	stopped chan struct{}

	// Owned by the render goroutine.
	state         state
	mode          RenderMode
	thread        egl.Thread
	env           *egl.Environment
	config        *egl.SurfaceConfig
	ctx           *egl.Context
	surf          *egl.Surface
	gl            gles.Functions
	win           egl.NativeWindowType
	width, height int
	// sizeChanged is set while a new size awaits delivery to the
	// Renderer.
	sizeChanged bool
	// announced is set once OnSurfaceCreated was delivered for ctx.
	announced     bool
	renderPending bool
	// lost is set after a swap lost the context, until a new surface
	// is ready. retried limits recovery to one attempt per wakeup.
	lost    bool
	retried bool
	// waiters are called after the next frame, or as soon as no
	// frame can be drawn.
	waiters []func()
}

func newLoop(native egl.Native, cfg config, r Renderer) *renderLoop {
	l := &renderLoop{
		cfg:      cfg,
		native:   native,
		renderer: r,
		mode:     cfg.mode,
		queue:    newQueue(),
		stopped:  make(chan struct{}),
	}
	go l.run()
	return l
}

// post queues c for the render thread. It reports false if the
// thread has exited, in which case c is acknowledged immediately.
func (l *renderLoop) post(c command) bool {
	if !l.queue.push(c) {
		c.complete()
		return false
	}
	return true
}

// postWait queues c and waits for the render thread to process it.
func (l *renderLoop) postWait(c command) {
	c.done = make(chan struct{})
	l.post(c)
	<-c.done
}

// Release shuts the render thread down and waits for it to exit.
func (l *renderLoop) Release() {
	l.postWait(command{kind: cmdShutdown})
	<-l.stopped
}

func (l *renderLoop) run() {
	defer close(l.stopped)
	// EGL binds the current context to the OS thread.
	runtime.LockOSThread()
	// Don't UnlockOSThread to avoid reuse by the Go runtime.

	l.state = stateRunning
	log.Logger().Debug("render thread started", "mode", l.mode)
	for {
		if c, ok := l.queue.pop(); ok {
			if c.kind == cmdShutdown {
				l.shutdown(c)
				return
			}
			l.handle(c)
			continue
		}
		if l.lost && !l.retried && l.needsSurface() {
			l.retried = true
			l.prepare()
			continue
		}
		if !l.canDraw() {
			l.fireWaiters()
		} else if l.mode == RenderContinuously || l.renderPending {
			l.drawFrame()
			continue
		}
		<-l.queue.wakeup
		l.retried = false
	}
}

func (l *renderLoop) handle(c command) {
	log.Logger().Debug("render thread command", "cmd", c.kind)
	switch c.kind {
	case cmdSurfaceCreated:
		l.flushRender()
		if l.surf != nil && l.surf.Window() != c.win {
			l.destroySurface()
		}
		l.win = c.win
		l.prepare()
	case cmdSurfaceChanged:
		l.width, l.height = c.width, c.height
		l.sizeChanged = true
		if l.state == stateRunning && l.surf != nil {
			l.deliverSize()
		}
	case cmdSurfaceDestroyed:
		l.flushRender()
		l.destroySurface()
		l.win = egl.NoWindow
		if l.ctx != nil && !l.env.MultipleContexts() {
			l.destroyContext()
		}
	case cmdPause:
		l.flushRender()
		l.destroySurface()
		l.win = egl.NoWindow
		if l.ctx != nil {
			if l.cfg.preserve && l.env.MultipleContexts() {
				l.releaseCurrent()
			} else {
				l.destroyContext()
			}
		}
		l.state = statePaused
	case cmdResume:
		l.state = stateRunning
		l.prepare()
	case cmdQueueEvent:
		l.flushRender()
		c.fn()
	case cmdRequestRender:
		l.renderPending = true
	case cmdSetRenderMode:
		l.mode = c.mode
	case cmdRedraw:
		l.flushRender()
		l.renderPending = true
		if c.fn != nil {
			l.waiters = append(l.waiters, c.fn)
		}
	}
	if c.done != nil {
		close(c.done)
	}
}

// canDraw reports whether a frame can be drawn now.
func (l *renderLoop) canDraw() bool {
	return l.state == stateRunning && l.surf != nil && l.width > 0 && l.height > 0
}

// needsSurface reports whether a frame is wanted for a known window
// that has no surface.
func (l *renderLoop) needsSurface() bool {
	if l.state != stateRunning || l.win == egl.NoWindow || l.surf != nil {
		return false
	}
	return l.mode == RenderContinuously || l.renderPending
}

// flushRender draws the pending frame, if any, so that it is ordered
// before the command being processed.
func (l *renderLoop) flushRender() {
	if l.renderPending && l.canDraw() {
		l.drawFrame()
	}
}

// prepare creates whatever is missing for drawing to the current
// window and makes it current. Failures are reported and leave the
// thread waiting for the next surface, resume or wakeup.
func (l *renderLoop) prepare() {
	if l.state != stateRunning || l.win == egl.NoWindow {
		return
	}
	if l.ctx != nil && l.ctx.Lost() {
		l.loseContext(egl.ErrContextLost)
	}
	err := l.makeCurrent()
	if errors.Is(err, egl.ErrContextLost) {
		// The context we kept is gone. Start over with a new one.
		l.loseContext(err)
		err = l.makeCurrent()
	}
	switch {
	case errors.Is(err, egl.ErrContextLost):
		l.loseContext(err)
		return
	case err != nil:
		l.report(err)
		return
	}
	l.lost = false
	if !l.announced {
		l.announced = true
		l.checkVersion()
		l.renderer.OnSurfaceCreated(l.gl, l.config)
	}
	if l.sizeChanged {
		l.deliverSize()
	}
}

func (l *renderLoop) makeCurrent() error {
	if err := l.openEnvironment(); err != nil {
		return err
	}
	if l.config == nil {
		cfg, err := l.cfg.chooser.ChooseConfig(l.env)
		if err != nil {
			return err
		}
		if cfg == nil {
			return egl.ErrNoMatchingConfig
		}
		log.Logger().Info("egl config chosen", "config", cfg)
		l.config = cfg
	}
	if l.ctx == nil {
		ctx, err := l.cfg.contexts.CreateContext(l.env, l.config)
		if err != nil {
			return err
		}
		if ctx == nil {
			return egl.ErrContextCreationFailed
		}
		l.ctx = ctx
		l.gl = l.functions(ctx)
		l.announced = false
	}
	if l.surf != nil {
		return nil
	}
	surf, err := l.cfg.surfaces.CreateWindowSurface(l.env, l.config, l.win)
	if err != nil {
		return err
	}
	if surf == nil {
		return fmt.Errorf("%w: no surface for window 0x%x", egl.ErrSurfaceCreationFailed, l.win)
	}
	if err := l.thread.MakeCurrent(l.ctx, surf, surf); err != nil {
		l.cfg.surfaces.DestroySurface(l.env, surf)
		return err
	}
	l.surf = surf
	// Vsync.
	if !surf.SwapInterval(1) {
		log.Logger().Debug("eglSwapInterval failed", "code", egl.CodeName(l.native.GetError()))
	}
	log.Logger().Debug("surface ready", "window", uint64(l.win))
	return nil
}

// checkVersion warns if the current context cannot serve the
// requested client version.
func (l *renderLoop) checkVersion() {
	str := l.ctx.Functions().GetString(gles.VERSION)
	ver, err := gles.ParseVersion(str)
	if err != nil {
		log.Logger().Debug("unknown GL version", "err", err)
		return
	}
	if !ver.Supports(l.cfg.clientVersion) {
		log.Logger().Warn("context does not support the requested client version", "version", ver, "requested", l.cfg.clientVersion)
		return
	}
	log.Logger().Info("context ready", "version", ver)
}

func (l *renderLoop) openEnvironment() error {
	if l.env != nil {
		return nil
	}
	var env *egl.Environment
	if l.cfg.env != nil {
		env = l.cfg.env.Retain()
	} else {
		var err error
		env, err = egl.Open(l.native, l.cfg.display)
		if err != nil {
			return err
		}
	}
	major, minor, err := env.Initialize()
	if err != nil {
		env.Release()
		return err
	}
	log.Logger().Info("egl initialized", "version", fmt.Sprintf("%d.%d", major, minor))
	l.env = env
	return nil
}

// functions returns the GL functions handed to the Renderer.
func (l *renderLoop) functions(ctx *egl.Context) gles.Functions {
	f := ctx.Functions()
	if l.cfg.wrapper != nil {
		f = l.cfg.wrapper(f)
	}
	if l.cfg.debug&DebugCheckGLError != 0 {
		f = gles.CheckErrors(f)
	}
	if l.cfg.debug&DebugLogGLCalls != 0 {
		f = gles.LogCalls(f, log.Logger())
	}
	return f
}

func (l *renderLoop) deliverSize() {
	l.sizeChanged = false
	l.renderer.OnSurfaceChanged(l.gl, l.width, l.height)
	l.renderPending = true
}

func (l *renderLoop) drawFrame() {
	l.renderPending = false
	l.renderer.OnDrawFrame(l.gl)
	err := l.surf.SwapBuffers()
	switch {
	case err == nil:
	case errors.Is(err, egl.ErrContextLost):
		l.ctx.MarkLost()
		l.loseContext(err)
		// The frame was not presented. Draw it again once the
		// context is recreated for the same window.
		l.lost = true
		l.retried = false
		l.renderPending = true
		return
	case errors.Is(err, egl.ErrBadSurface):
		// The window went away under us. Wait for a new one.
		log.Logger().Warn("surface lost", "err", err)
		l.destroySurface()
		l.win = egl.NoWindow
	default:
		l.report(err)
	}
	l.fireWaiters()
}

// loseContext tears down the lost context and its surface. The
// window is kept for recreating them.
func (l *renderLoop) loseContext(err error) {
	log.Logger().Warn("egl context lost", "err", err)
	l.destroySurface()
	l.destroyContext()
}

func (l *renderLoop) releaseCurrent() {
	if err := l.thread.Release(); err != nil {
		log.Logger().Warn("release current context", "err", err)
	}
}

func (l *renderLoop) destroySurface() {
	if l.surf == nil {
		return
	}
	if err := l.cfg.surfaces.DestroySurface(l.env, l.surf); err != nil {
		log.Logger().Warn("destroy surface", "err", err)
	}
	l.surf = nil
}

func (l *renderLoop) destroyContext() {
	if l.ctx == nil {
		return
	}
	l.releaseCurrent()
	if err := l.cfg.contexts.DestroyContext(l.env, l.ctx); err != nil {
		log.Logger().Warn("destroy context", "err", err)
	}
	l.ctx = nil
	l.gl = nil
	l.announced = false
}

func (l *renderLoop) fireWaiters() {
	w := l.waiters
	l.waiters = nil
	for _, fn := range w {
		fn()
	}
}

// report passes a recoverable error to the error handler.
func (l *renderLoop) report(err error) {
	log.Logger().Warn("render thread", "err", err)
	if h := l.cfg.onError; h != nil {
		h(err)
	}
}

// shutdown drains the queue and releases every resource. Queued
// events still run; other commands are only acknowledged.
func (l *renderLoop) shutdown(c command) {
	for _, rest := range l.queue.close() {
		if rest.kind == cmdQueueEvent {
			l.flushRender()
			rest.fn()
		}
		rest.complete()
	}
	l.destroySurface()
	l.destroyContext()
	if l.env != nil {
		l.env.Release()
		l.env = nil
	}
	l.fireWaiters()
	l.state = stateStopped
	log.Logger().Debug("render thread stopped")
	close(c.done)
}
