// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Attrib is an EGL attribute and its value.
type Attrib struct {
	Key, Value EGLint
}

// Attribs is an ordered attribute list.
type Attribs []Attrib

// Lookup returns the value of the first attribute with the given key.
func (a Attribs) Lookup(key EGLint) (EGLint, bool) {
	for _, at := range a {
		if at.Key == key {
			return at.Value, true
		}
	}
	return 0, false
}

// list flattens a into the NONE terminated form EGL expects.
func (a Attribs) list() []EGLint {
	l := make([]EGLint, 0, 2*len(a)+1)
	for _, at := range a {
		l = append(l, at.Key, at.Value)
	}
	return append(l, NONE)
}

// SurfaceConfig is a framebuffer configuration chosen from the
// candidates of a display. It is immutable and may back any number
// of contexts and surfaces.
type SurfaceConfig struct {
	handle  EGLConfig
	attribs Attribs
}

func (c *SurfaceConfig) Handle() EGLConfig {
	return c.handle
}

// Attrib returns a queried attribute of the config.
func (c *SurfaceConfig) Attrib(key EGLint) (EGLint, bool) {
	return c.attribs.Lookup(key)
}

// Attribs returns a copy of the queried attributes.
func (c *SurfaceConfig) Attribs() Attribs {
	return append(Attribs(nil), c.attribs...)
}

func (c *SurfaceConfig) size(key EGLint) int {
	v, _ := c.attribs.Lookup(key)
	return int(v)
}

// VisualID returns the native visual of the config.
func (c *SurfaceConfig) VisualID() int {
	return c.size(NATIVE_VISUAL_ID)
}

func (c *SurfaceConfig) String() string {
	return fmt.Sprintf("config %d: R%dG%dB%dA%d D%d S%d",
		c.size(CONFIG_ID),
		c.size(RED_SIZE), c.size(GREEN_SIZE), c.size(BLUE_SIZE), c.size(ALPHA_SIZE),
		c.size(DEPTH_SIZE), c.size(STENCIL_SIZE))
}

// ConfigSpec describes the framebuffer a renderer needs. Depth and
// Stencil are minimums. The color channels are minimums unless
// Exact is set, in which case red, green, blue and alpha must match.
type ConfigSpec struct {
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
	Exact                   bool
	// RenderableType is the required EGL_RENDERABLE_TYPE bit mask;
	// zero means OPENGL_ES2_BIT.
	RenderableType EGLint
}

// DefaultConfigSpec asks for RGB 8-8-8 with at least 16 bits of
// depth.
var DefaultConfigSpec = ConfigSpec{Red: 8, Green: 8, Blue: 8, Depth: 16}

// ChannelSpec returns a spec matching the color channels exactly.
func ChannelSpec(red, green, blue, alpha, depth, stencil int) ConfigSpec {
	return ConfigSpec{
		Red: red, Green: green, Blue: blue, Alpha: alpha,
		Depth: depth, Stencil: stencil,
		Exact: true,
	}
}

// RenderableTypeFor returns the EGL_RENDERABLE_TYPE bit for an
// OpenGL ES client version.
func RenderableTypeFor(clientVersion int) EGLint {
	if clientVersion >= 3 {
		return OPENGL_ES3_BIT_KHR
	}
	return OPENGL_ES2_BIT
}

// Attribs returns the minimum attributes passed to eglChooseConfig.
func (s ConfigSpec) Attribs() Attribs {
	rt := s.RenderableType
	if rt == 0 {
		rt = OPENGL_ES2_BIT
	}
	return Attribs{
		{RENDERABLE_TYPE, rt},
		{SURFACE_TYPE, WINDOW_BIT},
		{RED_SIZE, EGLint(s.Red)},
		{GREEN_SIZE, EGLint(s.Green)},
		{BLUE_SIZE, EGLint(s.Blue)},
		{ALPHA_SIZE, EGLint(s.Alpha)},
		{DEPTH_SIZE, EGLint(s.Depth)},
		{STENCIL_SIZE, EGLint(s.Stencil)},
	}
}

// Matches reports whether c satisfies s.
func (s ConfigSpec) Matches(c *SurfaceConfig) bool {
	if c.size(DEPTH_SIZE) < s.Depth || c.size(STENCIL_SIZE) < s.Stencil {
		return false
	}
	channels := [...][2]int{
		{c.size(RED_SIZE), s.Red},
		{c.size(GREEN_SIZE), s.Green},
		{c.size(BLUE_SIZE), s.Blue},
		{c.size(ALPHA_SIZE), s.Alpha},
	}
	for _, ch := range channels {
		if s.Exact && ch[0] != ch[1] || ch[0] < ch[1] {
			return false
		}
	}
	return true
}

func (s ConfigSpec) String() string {
	op := ">="
	if s.Exact {
		op = "=="
	}
	return fmt.Sprintf("RGBA%s%d%d%d%d D>=%d S>=%d", op, s.Red, s.Green, s.Blue, s.Alpha, s.Depth, s.Stencil)
}

// ChooseConfig selects the first candidate of the display that
// satisfies spec. The native ranking is kept.
func ChooseConfig(env *Environment, spec ConfigSpec) (*SurfaceConfig, error) {
	cands, err := env.ChooseConfigs(spec.Attribs())
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(cands, spec.Matches)
	if i == -1 {
		return nil, fmt.Errorf("%w for %v (%d candidates)", ErrNoMatchingConfig, spec, len(cands))
	}
	return cands[i], nil
}
