// SPDX-License-Identifier: Unlicense OR MIT

// Package soft implements egl.Native in memory. Window surfaces are
// backed by RGBA images, and failures such as context loss or stale
// windows can be injected to exercise recovery paths.
package soft

import (
	"image"
	"sort"
	"sync"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/gles"
)

// ConfigDesc describes a framebuffer configuration offered by a
// Driver.
type ConfigDesc struct {
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
	SurfaceType             egl.EGLint
	RenderableType          egl.EGLint
	VisualID                int
}

func (c ConfigDesc) bufferSize() int {
	return c.Red + c.Green + c.Blue + c.Alpha
}

// DefaultConfigs is the config list of a Driver created without
// WithConfigs.
var DefaultConfigs = []ConfigDesc{
	{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 24, Stencil: 8, SurfaceType: egl.WINDOW_BIT | egl.PBUFFER_BIT, RenderableType: egl.OPENGL_ES2_BIT | egl.OPENGL_ES3_BIT_KHR, VisualID: 1},
	{Red: 8, Green: 8, Blue: 8, Alpha: 0, Depth: 16, Stencil: 0, SurfaceType: egl.WINDOW_BIT | egl.PBUFFER_BIT, RenderableType: egl.OPENGL_ES2_BIT | egl.OPENGL_ES3_BIT_KHR, VisualID: 2},
	{Red: 8, Green: 8, Blue: 8, Alpha: 0, Depth: 24, Stencil: 8, SurfaceType: egl.WINDOW_BIT, RenderableType: egl.OPENGL_ES2_BIT | egl.OPENGL_ES3_BIT_KHR, VisualID: 3},
	{Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: 16, Stencil: 0, SurfaceType: egl.WINDOW_BIT, RenderableType: egl.OPENGL_ES2_BIT, VisualID: 4},
	{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 0, Stencil: 0, SurfaceType: egl.PBUFFER_BIT, RenderableType: egl.OPENGL_ES2_BIT, VisualID: 5},
}

// Option configures a Driver.
type Option func(d *Driver)

// WithConfigs replaces the configs offered by the display.
func WithConfigs(cfgs ...ConfigDesc) Option {
	return func(d *Driver) {
		d.configs = append([]ConfigDesc(nil), cfgs...)
	}
}

// WithVersion sets the EGL version reported by eglInitialize.
func WithVersion(major, minor int) Option {
	return func(d *Driver) {
		d.major, d.minor = major, minor
	}
}

// WithMaxClientVersion sets the highest OpenGL ES client version
// contexts can be created for.
func WithMaxClientVersion(v int) Option {
	return func(d *Driver) {
		d.maxClientVersion = v
	}
}

// WithSingleContext makes the display refuse a second live context,
// like old GPUs that cannot share the hardware between contexts.
func WithSingleContext() Option {
	return func(d *Driver) {
		d.singleContext = true
	}
}

// WithoutDisplay makes eglGetDisplay fail.
func WithoutDisplay() Option {
	return func(d *Driver) {
		d.noDisplay = true
	}
}

// Stats counts the objects and operations of a Driver.
type Stats struct {
	Initializations   int
	Terminations      int
	ContextsCreated   int
	ContextsDestroyed int
	SurfacesCreated   int
	SurfacesDestroyed int
	MakeCurrents      int
	Swaps             int
	// MaxCurrent is the largest number of contexts that were ever
	// current at the same time.
	MaxCurrent int
}

// Driver is an in-memory EGL implementation with one display.
type Driver struct {
	mu sync.Mutex

	configs          []ConfigDesc
	major, minor     int
	maxClientVersion int
	singleContext    bool
	noDisplay        bool

	initialized bool
	next        uintptr
	errs        map[int]egl.EGLint
	faults      map[string][]egl.EGLint
	contexts    map[egl.EGLContext]*context
	surfaces    map[egl.EGLSurface]*surface
	windows     map[egl.NativeWindowType]*Window
	// current maps OS thread IDs to their bindings.
	current  map[int]binding
	interval egl.EGLint
	stats    Stats
}

type binding struct {
	ctx        *context
	draw, read *surface
}

type context struct {
	handle  egl.EGLContext
	version int
	share   *context
	lost    bool
	current bool

	// GL state.
	clearColor [4]float32
	viewport   image.Rectangle
	glErr      gles.Enum
}

type surface struct {
	handle egl.EGLSurface
	cfg    ConfigDesc
	win    *Window
	back   *image.RGBA
}

// Window is a native window of a Driver.
type Window struct {
	handle        egl.NativeWindowType
	width, height int
	destroyed     bool
	surface       *surface
	front         *image.RGBA
	frames        int
}

const display egl.EGLDisplay = 1

// New returns a Driver with EGL 1.5 and client versions up to 3.
func New(opts ...Option) *Driver {
	d := &Driver{
		configs:          DefaultConfigs,
		major:            1,
		minor:            5,
		maxClientVersion: 3,
		faults:           make(map[string][]egl.EGLint),
		contexts:         make(map[egl.EGLContext]*context),
		surfaces:         make(map[egl.EGLSurface]*surface),
		windows:          make(map[egl.NativeWindowType]*Window),
		current:          make(map[int]binding),
		errs:             make(map[int]egl.EGLint),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Driver) handle() uintptr {
	d.next++
	return d.next
}

// fail records the error code of the calling thread and returns
// false, for use in return statements of failing calls.
func (d *Driver) fail(code egl.EGLint) bool {
	d.errs[threadID()] = code
	return false
}

// fault pops an injected error for op.
func (d *Driver) fault(op string) (egl.EGLint, bool) {
	codes := d.faults[op]
	if len(codes) == 0 {
		return 0, false
	}
	d.faults[op] = codes[1:]
	return codes[0], true
}

// FailNext makes the next call of the named EGL function (for example
// "eglCreateContext") fail with code. Repeated calls queue failures.
func (d *Driver) FailNext(op string, code egl.EGLint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = append(d.faults[op], code)
}

// LoseContexts marks every live context lost, as after a GPU reset.
// Subsequent eglMakeCurrent and eglSwapBuffers calls on them fail
// with EGL_CONTEXT_LOST.
func (d *Driver) LoseContexts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.contexts {
		c.lost = true
	}
}

// NewWindow creates a native window of the given size.
func (d *Driver) NewWindow(width, height int) egl.NativeWindowType {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &Window{
		handle: egl.NativeWindowType(d.handle()),
		width:  width,
		height: height,
		front:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	d.windows[w.handle] = w
	return w.handle
}

// DestroyWindow releases a native window. Surfaces still attached to
// it fail with EGL_BAD_NATIVE_WINDOW.
func (d *Driver) DestroyWindow(win egl.NativeWindowType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.windows[win]; ok {
		w.destroyed = true
		delete(d.windows, win)
	}
}

// ResizeWindow changes the size of a native window. Attached
// surfaces follow at their next swap.
func (d *Driver) ResizeWindow(win egl.NativeWindowType, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.windows[win]; ok {
		w.width, w.height = width, height
	}
}

// Frame returns a copy of the last image presented to win and the
// number of frames presented so far.
func (d *Driver) Frame(win egl.NativeWindowType) (*image.RGBA, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[win]
	if !ok {
		return nil, 0
	}
	img := image.NewRGBA(w.front.Bounds())
	copy(img.Pix, w.front.Pix)
	return img, w.frames
}

// Stats returns the driver counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// LiveContexts returns the number of contexts not yet destroyed.
func (d *Driver) LiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.contexts)
}

// LiveSurfaces returns the number of surfaces not yet destroyed.
func (d *Driver) LiveSurfaces() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.surfaces)
}

// Current returns the handles bound to the calling thread.
func (d *Driver) Current() (egl.EGLContext, egl.EGLSurface, egl.EGLSurface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var (
		ctx        egl.EGLContext
		draw, read egl.EGLSurface
	)
	b := d.current[threadID()]
	if b.ctx != nil {
		ctx = b.ctx.handle
	}
	if b.draw != nil {
		draw = b.draw.handle
	}
	if b.read != nil {
		read = b.read.handle
	}
	return ctx, draw, read
}

// CurrentContexts returns the number of contexts bound to any thread.
func (d *Driver) CurrentContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.current)
}

// SwapIntervalValue returns the last interval set by eglSwapInterval.
func (d *Driver) SwapIntervalValue() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.interval)
}

func (d *Driver) MultipleContexts(disp egl.EGLDisplay) bool {
	return !d.singleContext
}

func (d *Driver) GetDisplay(disp egl.NativeDisplayType) egl.EGLDisplay {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.noDisplay {
		d.fail(egl.BAD_DISPLAY)
		return egl.NoDisplay
	}
	return display
}

func (d *Driver) checkDisplay(disp egl.EGLDisplay) bool {
	switch {
	case disp != display:
		return d.fail(egl.BAD_DISPLAY)
	case !d.initialized:
		return d.fail(egl.NOT_INITIALIZED)
	}
	return true
}

func (d *Driver) Initialize(disp egl.EGLDisplay) (egl.EGLint, egl.EGLint, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if disp != display {
		return 0, 0, d.fail(egl.BAD_DISPLAY)
	}
	if code, ok := d.fault("eglInitialize"); ok {
		return 0, 0, d.fail(code)
	}
	if !d.initialized {
		d.initialized = true
		d.stats.Initializations++
	}
	return egl.EGLint(d.major), egl.EGLint(d.minor), true
}

func (d *Driver) Terminate(disp egl.EGLDisplay) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if disp != display {
		return d.fail(egl.BAD_DISPLAY)
	}
	if !d.initialized {
		return true
	}
	d.initialized = false
	d.stats.Terminations++
	for h, s := range d.surfaces {
		s.win.surface = nil
		delete(d.surfaces, h)
	}
	for h := range d.contexts {
		delete(d.contexts, h)
	}
	clear(d.current)
	return true
}

func (d *Driver) QueryString(disp egl.EGLDisplay, name egl.EGLint) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return ""
	}
	switch name {
	case egl.VENDOR:
		return "gioui.org/glsurface"
	case egl.VERSION:
		return "1.5 soft"
	case egl.CLIENT_APIS:
		return "OpenGL_ES"
	case egl.EXTENSIONS:
		return "EGL_KHR_create_context EGL_KHR_surfaceless_context EGL_KHR_gl_colorspace"
	}
	d.fail(egl.BAD_PARAMETER)
	return ""
}

// ChooseConfig matches configs like EGL 1.5: sizes are minimums,
// bit masks must be contained, and results are sorted by larger
// requested color depth first, then smaller buffer, depth and stencil
// sizes.
func (d *Driver) ChooseConfig(disp egl.EGLDisplay, attribs []egl.EGLint) ([]egl.EGLConfig, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return nil, false
	}
	if code, ok := d.fault("eglChooseConfig"); ok {
		return nil, d.fail(code)
	}
	want := make(map[egl.EGLint]egl.EGLint)
	for i := 0; i+1 < len(attribs) && attribs[i] != egl.NONE; i += 2 {
		want[attribs[i]] = attribs[i+1]
	}
	var idx []int
	for i := range d.configs {
		if matches(d.configs[i], want) {
			idx = append(idx, i)
		}
	}
	colorBits := func(c ConfigDesc) int {
		n := 0
		for k, v := range map[egl.EGLint]int{egl.RED_SIZE: c.Red, egl.GREEN_SIZE: c.Green, egl.BLUE_SIZE: c.Blue, egl.ALPHA_SIZE: c.Alpha} {
			if w, ok := want[k]; ok && w > 0 {
				n += v
			}
		}
		return n
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := d.configs[idx[i]], d.configs[idx[j]]
		if ca, cb := colorBits(a), colorBits(b); ca != cb {
			return ca > cb
		}
		if a.bufferSize() != b.bufferSize() {
			return a.bufferSize() < b.bufferSize()
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.Stencil < b.Stencil
	})
	cfgs := make([]egl.EGLConfig, len(idx))
	for i, j := range idx {
		cfgs[i] = egl.EGLConfig(j + 1)
	}
	return cfgs, true
}

func matches(c ConfigDesc, want map[egl.EGLint]egl.EGLint) bool {
	for k, v := range want {
		if v == egl.DONT_CARE {
			continue
		}
		switch k {
		case egl.RED_SIZE:
			if c.Red < int(v) {
				return false
			}
		case egl.GREEN_SIZE:
			if c.Green < int(v) {
				return false
			}
		case egl.BLUE_SIZE:
			if c.Blue < int(v) {
				return false
			}
		case egl.ALPHA_SIZE:
			if c.Alpha < int(v) {
				return false
			}
		case egl.DEPTH_SIZE:
			if c.Depth < int(v) {
				return false
			}
		case egl.STENCIL_SIZE:
			if c.Stencil < int(v) {
				return false
			}
		case egl.SURFACE_TYPE:
			if c.SurfaceType&v != v {
				return false
			}
		case egl.RENDERABLE_TYPE:
			if c.RenderableType&v != v {
				return false
			}
		}
	}
	return true
}

func (d *Driver) config(cfg egl.EGLConfig) (ConfigDesc, bool) {
	i := int(cfg) - 1
	if i < 0 || i >= len(d.configs) {
		return ConfigDesc{}, false
	}
	return d.configs[i], true
}

func (d *Driver) GetConfigAttrib(disp egl.EGLDisplay, cfg egl.EGLConfig, attr egl.EGLint) (egl.EGLint, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return 0, false
	}
	c, ok := d.config(cfg)
	if !ok {
		return 0, d.fail(egl.BAD_CONFIG)
	}
	var v int
	switch attr {
	case egl.CONFIG_ID:
		v = int(cfg)
	case egl.RED_SIZE:
		v = c.Red
	case egl.GREEN_SIZE:
		v = c.Green
	case egl.BLUE_SIZE:
		v = c.Blue
	case egl.ALPHA_SIZE:
		v = c.Alpha
	case egl.BUFFER_SIZE:
		v = c.bufferSize()
	case egl.DEPTH_SIZE:
		v = c.Depth
	case egl.STENCIL_SIZE:
		v = c.Stencil
	case egl.SURFACE_TYPE:
		v = int(c.SurfaceType)
	case egl.RENDERABLE_TYPE:
		v = int(c.RenderableType)
	case egl.NATIVE_VISUAL_ID:
		v = c.VisualID
	case egl.CONFIG_CAVEAT:
		v = egl.NONE
	default:
		return 0, d.fail(egl.BAD_ATTRIBUTE)
	}
	return egl.EGLint(v), true
}

func (d *Driver) CreateContext(disp egl.EGLDisplay, cfg egl.EGLConfig, shareCtx egl.EGLContext, attribs []egl.EGLint) egl.EGLContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return egl.NoContext
	}
	c, ok := d.config(cfg)
	if !ok {
		d.fail(egl.BAD_CONFIG)
		return egl.NoContext
	}
	if code, ok := d.fault("eglCreateContext"); ok {
		d.fail(code)
		return egl.NoContext
	}
	version := 1
	for i := 0; i+1 < len(attribs) && attribs[i] != egl.NONE; i += 2 {
		switch attribs[i] {
		case egl.CONTEXT_CLIENT_VERSION:
			version = int(attribs[i+1])
		default:
			d.fail(egl.BAD_ATTRIBUTE)
			return egl.NoContext
		}
	}
	if version > d.maxClientVersion || version >= 3 && c.RenderableType&egl.OPENGL_ES3_BIT_KHR == 0 {
		d.fail(egl.BAD_MATCH)
		return egl.NoContext
	}
	var share *context
	if shareCtx != egl.NoContext {
		share, ok = d.contexts[shareCtx]
		if !ok || share.lost {
			d.fail(egl.BAD_CONTEXT)
			return egl.NoContext
		}
	}
	if d.singleContext && len(d.contexts) > 0 {
		d.fail(egl.BAD_ALLOC)
		return egl.NoContext
	}
	ctx := &context{
		handle:  egl.EGLContext(d.handle()),
		version: version,
		share:   share,
	}
	d.contexts[ctx.handle] = ctx
	d.stats.ContextsCreated++
	return ctx.handle
}

func (d *Driver) DestroyContext(disp egl.EGLDisplay, ctx egl.EGLContext) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return false
	}
	c, ok := d.contexts[ctx]
	if !ok {
		return d.fail(egl.BAD_CONTEXT)
	}
	d.unbind(func(b binding) bool { return b.ctx == c })
	delete(d.contexts, ctx)
	d.stats.ContextsDestroyed++
	return true
}

func (d *Driver) CreateWindowSurface(disp egl.EGLDisplay, cfg egl.EGLConfig, win egl.NativeWindowType, attribs []egl.EGLint) egl.EGLSurface {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return egl.NoSurface
	}
	c, ok := d.config(cfg)
	if !ok {
		d.fail(egl.BAD_CONFIG)
		return egl.NoSurface
	}
	if c.SurfaceType&egl.WINDOW_BIT == 0 {
		d.fail(egl.BAD_MATCH)
		return egl.NoSurface
	}
	w, ok := d.windows[win]
	if !ok || w.destroyed {
		d.fail(egl.BAD_NATIVE_WINDOW)
		return egl.NoSurface
	}
	if w.surface != nil {
		// A window can only be associated with one surface at a time.
		d.fail(egl.BAD_ALLOC)
		return egl.NoSurface
	}
	if code, ok := d.fault("eglCreateWindowSurface"); ok {
		d.fail(code)
		return egl.NoSurface
	}
	s := &surface{
		handle: egl.EGLSurface(d.handle()),
		cfg:    c,
		win:    w,
		back:   image.NewRGBA(image.Rect(0, 0, w.width, w.height)),
	}
	w.surface = s
	d.surfaces[s.handle] = s
	d.stats.SurfacesCreated++
	return s.handle
}

func (d *Driver) DestroySurface(disp egl.EGLDisplay, surf egl.EGLSurface) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return false
	}
	s, ok := d.surfaces[surf]
	if !ok {
		return d.fail(egl.BAD_SURFACE)
	}
	if s.win.surface == s {
		s.win.surface = nil
	}
	d.unbind(func(b binding) bool { return b.draw == s || b.read == s })
	delete(d.surfaces, surf)
	d.stats.SurfacesDestroyed++
	return true
}

// setCurrent binds ctx and its surfaces to the calling thread.
func (d *Driver) setCurrent(ctx *context, draw, read *surface) {
	tid := threadID()
	if old := d.current[tid].ctx; old != nil {
		old.current = false
	}
	if ctx == nil {
		delete(d.current, tid)
		return
	}
	ctx.current = true
	d.current[tid] = binding{ctx: ctx, draw: draw, read: read}
	if n := len(d.current); n > d.stats.MaxCurrent {
		d.stats.MaxCurrent = n
	}
}

// unbind releases the bindings of every thread matching f.
func (d *Driver) unbind(f func(b binding) bool) {
	for tid, b := range d.current {
		if f(b) {
			b.ctx.current = false
			delete(d.current, tid)
		}
	}
}

func (d *Driver) MakeCurrent(disp egl.EGLDisplay, draw, read egl.EGLSurface, ctx egl.EGLContext) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return false
	}
	if code, ok := d.fault("eglMakeCurrent"); ok {
		return d.fail(code)
	}
	if ctx == egl.NoContext {
		if draw != egl.NoSurface || read != egl.NoSurface {
			return d.fail(egl.BAD_MATCH)
		}
		d.setCurrent(nil, nil, nil)
		return true
	}
	c, ok := d.contexts[ctx]
	if !ok {
		return d.fail(egl.BAD_CONTEXT)
	}
	if c.lost {
		return d.fail(egl.CONTEXT_LOST)
	}
	if c.current && d.current[threadID()].ctx != c {
		return d.fail(egl.BAD_ACCESS)
	}
	var ds, rs *surface
	if draw != egl.NoSurface {
		if ds, ok = d.surfaces[draw]; !ok {
			return d.fail(egl.BAD_SURFACE)
		}
		if ds.win.destroyed {
			return d.fail(egl.BAD_NATIVE_WINDOW)
		}
	}
	if read != egl.NoSurface {
		if rs, ok = d.surfaces[read]; !ok {
			return d.fail(egl.BAD_SURFACE)
		}
	}
	d.setCurrent(c, ds, rs)
	d.stats.MakeCurrents++
	return true
}

func (d *Driver) SwapBuffers(disp egl.EGLDisplay, surf egl.EGLSurface) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return false
	}
	s, ok := d.surfaces[surf]
	if !ok {
		return d.fail(egl.BAD_SURFACE)
	}
	if code, ok := d.fault("eglSwapBuffers"); ok {
		return d.fail(code)
	}
	b := d.current[threadID()]
	if b.ctx != nil && b.ctx.lost {
		return d.fail(egl.CONTEXT_LOST)
	}
	if b.draw != s {
		return d.fail(egl.BAD_SURFACE)
	}
	if s.win.destroyed {
		return d.fail(egl.BAD_NATIVE_WINDOW)
	}
	present(s)
	d.stats.Swaps++
	return true
}

func (d *Driver) SwapInterval(disp egl.EGLDisplay, interval egl.EGLint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.checkDisplay(disp) {
		return false
	}
	if d.current[threadID()].ctx == nil {
		return d.fail(egl.BAD_CONTEXT)
	}
	d.interval = interval
	return true
}

func (d *Driver) ReleaseThread() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setCurrent(nil, nil, nil)
	return true
}

func (d *Driver) GetError() egl.EGLint {
	d.mu.Lock()
	defer d.mu.Unlock()
	tid := threadID()
	code, ok := d.errs[tid]
	if !ok {
		return egl.SUCCESS
	}
	delete(d.errs, tid)
	return code
}

func (d *Driver) Functions(disp egl.EGLDisplay, ctx egl.EGLContext) gles.Functions {
	return &functions{d: d, ctx: ctx}
}
