// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"fmt"
	"strings"
	"sync"
)

// Environment is an EGL display connection. Configs, contexts and
// surfaces derived from it become invalid once it is terminated.
//
// An Environment may be shared by several render threads; Retain
// and Release count the users and the last Release terminates the
// display.
type Environment struct {
	native Native

	mu           sync.Mutex
	disp         EGLDisplay
	major, minor int
	initialized  bool
	terminated   bool
	refs         int
	exts         []string
}

// Open connects to a native display. The returned Environment holds
// one reference.
func Open(n Native, display NativeDisplayType) (*Environment, error) {
	disp := n.GetDisplay(display)
	if disp == NoDisplay {
		return nil, lastError(n, "eglGetDisplay", ErrDisplayUnavailable)
	}
	return &Environment{native: n, disp: disp, refs: 1}, nil
}

// Initialize initializes the display and returns the EGL version.
// Initializing an initialized display returns the negotiated version.
func (e *Environment) Initialize() (major, minor int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return 0, 0, ErrTerminated
	}
	if e.initialized {
		return e.major, e.minor, nil
	}
	maj, min, ok := e.native.Initialize(e.disp)
	if !ok {
		return 0, 0, lastError(e.native, "eglInitialize", ErrInitializationFailed)
	}
	e.major, e.minor = int(maj), int(min)
	e.exts = strings.Fields(e.native.QueryString(e.disp, EXTENSIONS))
	e.initialized = true
	return e.major, e.minor, nil
}

// Version returns the version negotiated by Initialize.
func (e *Environment) Version() (major, minor int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.major, e.minor
}

func (e *Environment) HasExtension(ext string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, x := range e.exts {
		if x == ext {
			return true
		}
	}
	return false
}

// MultipleContexts reports whether the display supports more than
// one live context. Implementations that cannot tell are assumed to.
func (e *Environment) MultipleContexts() bool {
	if c, ok := e.native.(ContextCapabilities); ok {
		return c.MultipleContexts(e.disp)
	}
	return true
}

// ChooseConfigs returns the configs matching the minimum attributes
// in attribs, ranked by the native implementation.
func (e *Environment) ChooseConfigs(attribs Attribs) ([]*SurfaceConfig, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	handles, ok := e.native.ChooseConfig(e.disp, attribs.list())
	if !ok {
		return nil, lastError(e.native, "eglChooseConfig", ErrNoMatchingConfig)
	}
	cfgs := make([]*SurfaceConfig, 0, len(handles))
	for _, h := range handles {
		cfg, err := e.describe(h)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

var describedAttribs = []EGLint{
	CONFIG_ID,
	RED_SIZE,
	GREEN_SIZE,
	BLUE_SIZE,
	ALPHA_SIZE,
	DEPTH_SIZE,
	STENCIL_SIZE,
	SURFACE_TYPE,
	RENDERABLE_TYPE,
	NATIVE_VISUAL_ID,
}

func (e *Environment) describe(h EGLConfig) (*SurfaceConfig, error) {
	cfg := &SurfaceConfig{handle: h}
	for _, a := range describedAttribs {
		v, ok := e.native.GetConfigAttrib(e.disp, h, a)
		if !ok {
			return nil, fmt.Errorf("egl: eglGetConfigAttrib(0x%x) failed: 0x%x", a, e.native.GetError())
		}
		cfg.attribs = append(cfg.attribs, Attrib{Key: a, Value: v})
	}
	return cfg, nil
}

// Retain adds a reference to e.
func (e *Environment) Retain() *Environment {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs++
	return e
}

// Release drops a reference and terminates the display when no
// references remain.
func (e *Environment) Release() {
	e.mu.Lock()
	e.refs--
	last := e.refs <= 0
	e.mu.Unlock()
	if last {
		e.Terminate()
	}
}

// Terminate releases the display regardless of references. It is
// safe to call more than once.
func (e *Environment) Terminate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return
	}
	e.terminated = true
	if e.initialized {
		e.native.Terminate(e.disp)
		e.native.ReleaseThread()
	}
	e.initialized = false
}

// Native returns the EGL implementation behind e.
func (e *Environment) Native() Native {
	return e.native
}

// Display returns the EGL display handle.
func (e *Environment) Display() EGLDisplay {
	return e.disp
}

// check reports whether objects may still be created from e.
func (e *Environment) check() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.terminated:
		return ErrTerminated
	case !e.initialized:
		return ErrNotInitialized
	}
	return nil
}

func (e *Environment) alive() bool {
	return e.check() == nil
}
