// SPDX-License-Identifier: Unlicense OR MIT

package soft

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/gles"
)

// functions renders into the back buffer of the surface current
// with its context.
type functions struct {
	d   *Driver
	ctx egl.EGLContext
}

// target returns the context if it is current on the calling
// thread, recording
// GL_INVALID_OPERATION otherwise.
func (f *functions) target() (*context, *surface) {
	c, ok := f.d.contexts[f.ctx]
	if !ok {
		return nil, nil
	}
	b := f.d.current[threadID()]
	if b.ctx != c {
		c.glErr = gles.INVALID_OPERATION
		return nil, nil
	}
	return c, b.draw
}

func (f *functions) ClearColor(red, green, blue, alpha float32) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if c, _ := f.target(); c != nil {
		c.clearColor = [4]float32{red, green, blue, alpha}
	}
}

func (f *functions) Clear(mask gles.Enum) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c, s := f.target()
	if c == nil || s == nil {
		return
	}
	if mask&^(gles.COLOR_BUFFER_BIT|gles.DEPTH_BUFFER_BIT|gles.STENCIL_BUFFER_BIT) != 0 {
		c.glErr = gles.INVALID_VALUE
		return
	}
	if mask&gles.COLOR_BUFFER_BIT == 0 {
		return
	}
	r := s.back.Bounds()
	if !c.viewport.Empty() {
		r = r.Intersect(c.viewport)
	}
	col := color.NRGBA{
		R: channel(c.clearColor[0]),
		G: channel(c.clearColor[1]),
		B: channel(c.clearColor[2]),
		A: channel(c.clearColor[3]),
	}
	draw.Draw(s.back, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*0xff + .5)
}

func (f *functions) Viewport(x, y, width, height int) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c, _ := f.target()
	if c == nil {
		return
	}
	if width < 0 || height < 0 {
		c.glErr = gles.INVALID_VALUE
		return
	}
	c.viewport = image.Rect(x, y, x+width, y+height)
}

func (f *functions) Flush()  {}
func (f *functions) Finish() {}

func (f *functions) GetError() gles.Enum {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c, ok := f.d.contexts[f.ctx]
	if !ok {
		return gles.NO_ERROR
	}
	if c.lost {
		return gles.CONTEXT_LOST
	}
	err := c.glErr
	c.glErr = gles.NO_ERROR
	return err
}

func (f *functions) GetString(pname gles.Enum) string {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c, _ := f.target()
	if c == nil {
		return ""
	}
	switch pname {
	case gles.VENDOR:
		return "gioui.org"
	case gles.RENDERER:
		return "soft"
	case gles.VERSION:
		if c.version >= 3 {
			return "OpenGL ES 3.0 soft"
		}
		return "OpenGL ES 2.0 soft"
	case gles.SHADING_LANGUAGE_VERSION:
		if c.version >= 3 {
			return "OpenGL ES GLSL ES 3.00"
		}
		return "OpenGL ES GLSL ES 1.00"
	case gles.EXTENSIONS:
		return ""
	}
	c.glErr = gles.INVALID_ENUM
	return ""
}

// present copies the back buffer of s to its window. The back buffer
// is scaled when the window was resized since the surface last
// presented, and then reallocated at the new size.
func present(s *surface) {
	w := s.win
	dst := image.Rect(0, 0, w.width, w.height)
	if w.front.Bounds() != dst {
		w.front = image.NewRGBA(dst)
	}
	if s.back.Bounds() == dst {
		copy(w.front.Pix, s.back.Pix)
	} else {
		draw.NearestNeighbor.Scale(w.front, dst, s.back, s.back.Bounds(), draw.Src, nil)
		s.back = image.NewRGBA(dst)
	}
	w.frames++
}
