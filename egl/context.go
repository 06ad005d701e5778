// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"fmt"
	"sync"

	"gioui.org/glsurface/gles"
)

// Context is an EGL rendering context.
type Context struct {
	env     *Environment
	config  *SurfaceConfig
	handle  EGLContext
	version int

	// Guarded by currentMu.
	thread    *Thread
	lost      bool
	destroyed bool
}

// Thread tracks the context and surfaces current on one OS thread.
// A context is current on at most one Thread at a time, and a Thread
// has at most one current context.
//
// The zero value is a thread with nothing current.
type Thread struct {
	ctx        *Context
	draw, read *Surface
}

// currentMu guards the current bindings of all threads and contexts
// in the process.
var currentMu sync.Mutex

// CreateContext creates a context for cfg. A non-nil share context
// shares its texture and buffer namespace with the new context. A
// positive clientVersion is passed as EGL_CONTEXT_CLIENT_VERSION.
func CreateContext(env *Environment, cfg *SurfaceConfig, share *Context, clientVersion int) (*Context, error) {
	if err := env.check(); err != nil {
		return nil, err
	}
	var attribs Attribs
	if clientVersion > 0 {
		attribs = append(attribs, Attrib{CONTEXT_CLIENT_VERSION, EGLint(clientVersion)})
	}
	shareHandle := NoContext
	if share != nil {
		shareHandle = share.handle
	}
	h := env.native.CreateContext(env.disp, cfg.handle, shareHandle, attribs.list())
	if h == NoContext {
		return nil, lastError(env.native, "eglCreateContext", ErrContextCreationFailed)
	}
	return &Context{
		env:     env,
		config:  cfg,
		handle:  h,
		version: clientVersion,
	}, nil
}

func (c *Context) Handle() EGLContext {
	return c.handle
}

func (c *Context) Config() *SurfaceConfig {
	return c.config
}

// ClientVersion returns the version requested at creation, or zero.
func (c *Context) ClientVersion() int {
	return c.version
}

// Functions returns the GL ES functions of the context. They may
// only be called while the context is current.
func (c *Context) Functions() gles.Functions {
	return c.env.native.Functions(c.env.disp, c.handle)
}

// Lost reports whether an operation on the context failed with
// EGL_CONTEXT_LOST. A lost context and every GPU object it owned
// are gone; it must be destroyed and recreated.
func (c *Context) Lost() bool {
	currentMu.Lock()
	defer currentMu.Unlock()
	return c.lost
}

// MarkLost records that the context was lost, for example by a
// swap that failed with EGL_CONTEXT_LOST.
func (c *Context) MarkLost() {
	currentMu.Lock()
	defer currentMu.Unlock()
	c.lost = true
}

// Destroy releases the context. The context must not be current on
// any thread. Destroying a destroyed context does nothing.
func (c *Context) Destroy() error {
	currentMu.Lock()
	defer currentMu.Unlock()
	if c.destroyed {
		return nil
	}
	if c.thread != nil {
		return ErrContextStillCurrent
	}
	c.destroyed = true
	if !c.env.alive() {
		// Terminating the display destroyed the context.
		return nil
	}
	if !c.env.native.DestroyContext(c.env.disp, c.handle) {
		return fmt.Errorf("eglDestroyContext failed: 0x%x", c.env.native.GetError())
	}
	return nil
}

// MakeCurrent binds ctx with the draw and read surfaces to t,
// replacing the previous binding of t. A ctx current on another
// Thread fails with ErrMakeCurrentFailed. ErrContextLost means ctx
// must be destroyed and recreated; other failures may be retried.
func (t *Thread) MakeCurrent(ctx *Context, draw, read *Surface) error {
	currentMu.Lock()
	defer currentMu.Unlock()
	env := ctx.env
	if ctx.thread != nil && ctx.thread != t {
		return &Error{Op: "eglMakeCurrent", Code: BAD_ACCESS, Kind: ErrMakeCurrentFailed}
	}
	if ctx.lost {
		return &Error{Op: "eglMakeCurrent", Code: CONTEXT_LOST, Kind: ErrContextLost}
	}
	if ctx.destroyed || !env.alive() {
		return &Error{Op: "eglMakeCurrent", Code: BAD_CONTEXT, Kind: ErrMakeCurrentFailed}
	}
	drawH, readH := NoSurface, NoSurface
	if draw != nil {
		drawH = draw.handle
	}
	if read != nil {
		readH = read.handle
	}
	if !env.native.MakeCurrent(env.disp, drawH, readH, ctx.handle) {
		err := lastError(env.native, "eglMakeCurrent", ErrMakeCurrentFailed)
		if err.Code == CONTEXT_LOST {
			err.Kind = ErrContextLost
			ctx.lost = true
		}
		return err
	}
	t.unbind()
	ctx.thread = t
	for _, s := range []*Surface{draw, read} {
		if s != nil {
			s.thread = t
		}
	}
	t.ctx, t.draw, t.read = ctx, draw, read
	return nil
}

// Release unbinds the current context of t, if any. The binding is
// dropped even if the native call fails.
func (t *Thread) Release() error {
	currentMu.Lock()
	defer currentMu.Unlock()
	return t.releaseLocked()
}

func (t *Thread) releaseLocked() error {
	ctx := t.ctx
	if ctx == nil {
		return nil
	}
	t.unbind()
	env := ctx.env
	if !env.alive() {
		return nil
	}
	if !env.native.MakeCurrent(env.disp, NoSurface, NoSurface, NoContext) {
		return lastError(env.native, "eglMakeCurrent", ErrMakeCurrentFailed)
	}
	return nil
}

// unbind clears the bookkeeping of the current binding of t.
func (t *Thread) unbind() {
	if t.ctx != nil {
		t.ctx.thread = nil
	}
	for _, s := range []*Surface{t.draw, t.read} {
		if s != nil {
			s.thread = nil
		}
	}
	t.ctx, t.draw, t.read = nil, nil, nil
}

// Current returns the current binding of t.
func (t *Thread) Current() (ctx *Context, draw, read *Surface) {
	currentMu.Lock()
	defer currentMu.Unlock()
	return t.ctx, t.draw, t.read
}
