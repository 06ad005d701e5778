// SPDX-License-Identifier: Unlicense OR MIT

package view

import "gioui.org/glsurface/egl"

// Option configures a View at construction.
type Option func(c *config)

type config struct {
	display       egl.NativeDisplayType
	env           *egl.Environment
	mode          RenderMode
	preserve      bool
	clientVersion int
	debug         DebugFlags
	spec          *egl.ConfigSpec
	chooser       ConfigChooser
	contexts      ContextFactory
	surfaces      WindowSurfaceFactory
	wrapper       GLWrapper
	onError       ErrorHandler
}

// Display selects the native display opened by the render thread.
// The default is egl.DefaultDisplay.
func Display(d egl.NativeDisplayType) Option {
	return func(c *config) {
		c.display = d
	}
}

// Environment makes the View share an open display instead of
// opening its own. The View holds a reference to env while its render
// thread runs.
func Environment(env *egl.Environment) Option {
	return func(c *config) {
		c.env = env
	}
}

// Mode sets the initial render mode.
func Mode(m RenderMode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// PreserveContextOnPause keeps the context across pauses where the
// display supports more than one context.
func PreserveContextOnPause(preserve bool) Option {
	return func(c *config) {
		c.preserve = preserve
	}
}

// ClientVersion sets the OpenGL ES version requested by the default
// context factory and config chooser. Zero leaves the version to
// EGL.
func ClientVersion(v int) Option {
	return func(c *config) {
		c.clientVersion = v
	}
}

func Debug(flags DebugFlags) Option {
	return func(c *config) {
		c.debug = flags
	}
}

// withDefaults fills in the default strategies.
func (c config) withDefaults() config {
	if c.chooser == nil {
		spec := egl.DefaultConfigSpec
		if c.spec != nil {
			spec = *c.spec
		}
		if spec.RenderableType == 0 {
			spec.RenderableType = egl.RenderableTypeFor(c.clientVersion)
		}
		c.chooser = specChooser{spec: spec}
	}
	if c.contexts == nil {
		c.contexts = defaultContextFactory{clientVersion: c.clientVersion}
	}
	if c.surfaces == nil {
		c.surfaces = defaultSurfaceFactory{}
	}
	return c
}
