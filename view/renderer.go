// SPDX-License-Identifier: Unlicense OR MIT

package view

import (
	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/gles"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../internal/mocks/mock_renderer.go -package=mocks gioui.org/glsurface/view Renderer

// Renderer draws the content of a View. Its methods are called on
// the render thread only, never concurrently.
//
// OnSurfaceCreated is called whenever a new context is ready,
// including after the previous context was lost or torn down on
// pause. Every GL object created with an earlier context is gone by
// then and must be recreated.
type Renderer interface {
	OnSurfaceCreated(gl gles.Functions, cfg *egl.SurfaceConfig)
	OnSurfaceChanged(gl gles.Functions, width, height int)
	OnDrawFrame(gl gles.Functions)
}

// RenderMode selects when frames are drawn.
type RenderMode uint8

const (
	// RenderWhenDirty draws a frame after RequestRender and after
	// the surface size changed.
	RenderWhenDirty RenderMode = iota
	// RenderContinuously draws frames for as long as a surface is
	// available.
	RenderContinuously
)

func (m RenderMode) String() string {
	switch m {
	case RenderWhenDirty:
		return "when-dirty"
	case RenderContinuously:
		return "continuously"
	default:
		return "invalid"
	}
}

// DebugFlags enable checks on the GL functions given to the
// Renderer.
type DebugFlags uint8

const (
	// DebugCheckGLError panics with a *gles.Error after any GL call
	// that leaves an error.
	DebugCheckGLError DebugFlags = 1 << iota
	// DebugLogGLCalls logs every GL call at debug level.
	DebugLogGLCalls
)

// ConfigChooser picks the framebuffer configuration. It is called
// once per View, on the render thread.
type ConfigChooser interface {
	ChooseConfig(env *egl.Environment) (*egl.SurfaceConfig, error)
}

// ConfigChooserFunc adapts a function to ConfigChooser.
type ConfigChooserFunc func(env *egl.Environment) (*egl.SurfaceConfig, error)

func (f ConfigChooserFunc) ChooseConfig(env *egl.Environment) (*egl.SurfaceConfig, error) {
	return f(env)
}

// ContextFactory creates and destroys the rendering context.
type ContextFactory interface {
	CreateContext(env *egl.Environment, cfg *egl.SurfaceConfig) (*egl.Context, error)
	DestroyContext(env *egl.Environment, ctx *egl.Context) error
}

// WindowSurfaceFactory creates and destroys window surfaces. A nil
// surface without an error is treated as a creation failure.
type WindowSurfaceFactory interface {
	CreateWindowSurface(env *egl.Environment, cfg *egl.SurfaceConfig, win egl.NativeWindowType) (*egl.Surface, error)
	DestroySurface(env *egl.Environment, s *egl.Surface) error
}

// GLWrapper wraps the GL functions before they are handed to the
// Renderer.
type GLWrapper func(gl gles.Functions) gles.Functions

// ErrorHandler receives the errors the render thread recovers from,
// such as a failed surface creation. It is called on the render
// thread.
type ErrorHandler func(err error)

type specChooser struct {
	spec egl.ConfigSpec
}

func (c specChooser) ChooseConfig(env *egl.Environment) (*egl.SurfaceConfig, error) {
	return egl.ChooseConfig(env, c.spec)
}

// depthSpec is the ConfigSpec of SetDepth: RGB 8-8-8 with or without a
// 16 bit depth buffer.
func depthSpec(needDepth bool) egl.ConfigSpec {
	spec := egl.DefaultConfigSpec
	if !needDepth {
		spec.Depth = 0
	}
	return spec
}

type defaultContextFactory struct {
	clientVersion int
}

func (f defaultContextFactory) CreateContext(env *egl.Environment, cfg *egl.SurfaceConfig) (*egl.Context, error) {
	return egl.CreateContext(env, cfg, nil, f.clientVersion)
}

func (defaultContextFactory) DestroyContext(env *egl.Environment, ctx *egl.Context) error {
	return ctx.Destroy()
}

type defaultSurfaceFactory struct{}

func (defaultSurfaceFactory) CreateWindowSurface(env *egl.Environment, cfg *egl.SurfaceConfig, win egl.NativeWindowType) (*egl.Surface, error) {
	return egl.CreateWindowSurface(env, cfg, win, nil)
}

func (defaultSurfaceFactory) DestroySurface(env *egl.Environment, s *egl.Surface) error {
	return s.Destroy()
}
