// SPDX-License-Identifier: Unlicense OR MIT

package view

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/egl/soft"
	"gioui.org/glsurface/gles"
)

const timeout = 5 * time.Second

// recorder is a Renderer that records its callbacks.
type recorder struct {
	// Optional hooks, set before the renderer is registered.
	created func(gl gles.Functions, cfg *egl.SurfaceConfig)
	draw    func(gl gles.Functions)

	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) OnSurfaceCreated(gl gles.Functions, cfg *egl.SurfaceConfig) {
	r.add("created")
	if r.created != nil {
		r.created(gl, cfg)
	}
}

func (r *recorder) OnSurfaceChanged(gl gles.Functions, width, height int) {
	gl.Viewport(0, 0, width, height)
	r.add(fmt.Sprintf("changed %dx%d", width, height))
}

func (r *recorder) OnDrawFrame(gl gles.Functions) {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gles.COLOR_BUFFER_BIT)
	r.add("draw")
	if r.draw != nil {
		r.draw(gl)
	}
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(ev string) int {
	n := 0
	for _, e := range r.Events() {
		if e == ev {
			n++
		}
	}
	return n
}

// start registers r with a new View on drv and detaches the View at
// the end of the test.
func start(t *testing.T, drv *soft.Driver, r Renderer, opts ...Option) *View {
	t.Helper()
	v := New(drv, opts...)
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)
	return v
}

// drain waits until the render thread processed everything queued
// before it.
func drain(t *testing.T, v *View) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, v.QueueEvent(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("render thread did not drain its queue")
	}
}

// gate blocks the render thread until the returned function is
// called.
func gate(t *testing.T, v *View) func() {
	t.Helper()
	ch := make(chan struct{})
	entered := make(chan struct{})
	require.NoError(t, v.QueueEvent(func() {
		close(entered)
		<-ch
	}))
	<-entered
	var once sync.Once
	open := func() { once.Do(func() { close(ch) }) }
	t.Cleanup(open)
	return open
}

// waitQueued waits until n commands are queued.
func waitQueued(t *testing.T, v *View, n int) {
	t.Helper()
	waitFor(t, func() bool { return v.renderLoop().queue.len() >= n })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

// show reports a 64x64 window and waits for the first frame.
func show(t *testing.T, drv *soft.Driver, v *View) egl.NativeWindowType {
	t.Helper()
	w := drv.NewWindow(64, 64)
	v.SurfaceCreated(w)
	v.SurfaceChanged(0, 64, 64)
	drain(t, v)
	return w
}

func TestUsageErrors(t *testing.T) {
	drv := soft.New()
	v := New(drv)
	assert.ErrorIs(t, v.QueueEvent(func() {}), ErrNoRenderer)
	assert.ErrorIs(t, v.QueueEvent(nil), ErrNilEvent)
	assert.ErrorIs(t, v.SetRenderer(nil), ErrNoRenderer)
	require.NoError(t, v.SetPreserveContextOnPause(true))
	require.NoError(t, v.SetDebugFlags(DebugLogGLCalls))
	require.NoError(t, v.SetDepth(false))
	require.NoError(t, v.SetRenderer(new(recorder)))
	t.Cleanup(v.Detach)

	setters := map[string]func() error{
		"SetRenderer":               func() error { return v.SetRenderer(new(recorder)) },
		"SetPreserveContextOnPause": func() error { return v.SetPreserveContextOnPause(false) },
		"SetContextClientVersion":   func() error { return v.SetContextClientVersion(3) },
		"SetConfigChooser":          func() error { return v.SetConfigChooser(specChooser{}) },
		"SetDepth":                  func() error { return v.SetDepth(true) },
		"SetConfigSpec":             func() error { return v.SetConfigSpec(8, 8, 8, 8, 0, 0) },
		"SetContextFactory":         func() error { return v.SetContextFactory(defaultContextFactory{}) },
		"SetWindowSurfaceFactory":   func() error { return v.SetWindowSurfaceFactory(defaultSurfaceFactory{}) },
		"SetGLWrapper":              func() error { return v.SetGLWrapper(nil) },
		"SetDebugFlags":             func() error { return v.SetDebugFlags(0) },
		"SetErrorHandler":           func() error { return v.SetErrorHandler(nil) },
	}
	for name, set := range setters {
		assert.ErrorIs(t, set(), ErrRendererSet, name)
	}
	assert.True(t, v.PreserveContextOnPause())
	assert.Equal(t, DebugLogGLCalls, v.DebugFlags())

	require.NoError(t, v.SetRenderMode(RenderContinuously))
	assert.Equal(t, RenderContinuously, v.RenderMode())
	assert.Error(t, v.SetRenderMode(RenderMode(7)))
	assert.Equal(t, RenderContinuously, v.RenderMode())
	assert.ErrorIs(t, v.QueueEvent(nil), ErrNilEvent)
	drain(t, v)

	v.Detach()
	assert.ErrorIs(t, v.QueueEvent(func() {}), ErrDetached)
	v.Attach()
	drain(t, v)
}

func TestExampleScenario(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r, Mode(RenderWhenDirty), PreserveContextOnPause(false))
	w, w2 := drv.NewWindow(100, 100), drv.NewWindow(100, 100)

	// Queue the first commands while the render thread is busy, so
	// they are processed as one batch.
	open := gate(t, v)
	v.SurfaceCreated(w)
	v.SurfaceChanged(0, 100, 100)
	v.RequestRender()
	host := make(chan struct{})
	go func() {
		defer close(host)
		v.OnPause()
		v.OnResume()
		v.SurfaceCreated(w2)
		v.RequestRender()
	}()
	waitQueued(t, v, 4)
	open()
	select {
	case <-host:
	case <-time.After(timeout):
		t.Fatal("OnPause did not return")
	}
	drain(t, v)

	want := []string{"created", "changed 100x100", "draw", "created", "draw"}
	assert.Equal(t, want, r.Events())
	st := drv.Stats()
	assert.Equal(t, 2, st.ContextsCreated)
	assert.Equal(t, 1, st.ContextsDestroyed)
	assert.Equal(t, 2, st.Swaps)
	assert.Equal(t, 1, st.MaxCurrent)
	_, frames := drv.Frame(w2)
	assert.Equal(t, 1, frames)
}

func TestPauseResume(t *testing.T) {
	tests := []struct {
		name     string
		opts     []soft.Option
		preserve bool
		want     []string
		contexts int
	}{
		{"discard", nil, false, []string{"created", "changed 64x64", "draw", "created", "draw"}, 2},
		{"preserve", nil, true, []string{"created", "changed 64x64", "draw", "draw"}, 1},
		{"single context", []soft.Option{soft.WithSingleContext()}, true, []string{"created", "changed 64x64", "draw", "created", "draw"}, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			drv := soft.New(test.opts...)
			r := new(recorder)
			v := start(t, drv, r, PreserveContextOnPause(test.preserve))
			w := show(t, drv, v)

			v.OnPause()
			assert.Zero(t, drv.LiveSurfaces(), "surface survived pause")
			assert.Zero(t, drv.CurrentContexts(), "context still current after pause")

			// Paused views don't draw.
			v.SurfaceCreated(w)
			drain(t, v)
			assert.Equal(t, 1, r.count("draw"))

			v.OnResume()
			v.RequestRender()
			drain(t, v)
			assert.Equal(t, test.want, r.Events())
			assert.Equal(t, test.contexts, drv.Stats().ContextsCreated)
		})
	}
}

func TestContextLossOnSwap(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)
	w := show(t, drv, v)

	require.NoError(t, v.QueueEvent(drv.LoseContexts))
	v.RequestRender()
	// The swap fails, and the frame is drawn again on a new context
	// for the same window without help from the host.
	waitFor(t, func() bool { return r.count("draw") == 3 })
	drain(t, v)
	assert.Equal(t, []string{"created", "changed 64x64", "draw", "draw", "created", "draw"}, r.Events())
	assert.Equal(t, 1, drv.LiveContexts())
	assert.Equal(t, 2, drv.Stats().ContextsCreated)
	_, frames := drv.Frame(w)
	assert.Equal(t, 2, frames)

	v.RequestRender()
	drain(t, v)
	assert.Equal(t, 4, r.count("draw"))
	assert.Equal(t, 2, r.count("created"))
}

func TestContextLossContinuous(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r, Mode(RenderContinuously))
	w := show(t, drv, v)
	waitFor(t, func() bool { return r.count("draw") > 3 })

	require.NoError(t, v.QueueEvent(drv.LoseContexts))
	waitFor(t, func() bool { return r.count("created") == 2 })
	n := r.count("draw")
	waitFor(t, func() bool { return r.count("draw") > n+3 })
	assert.Equal(t, 1, drv.LiveContexts())
	assert.Equal(t, 1, drv.LiveSurfaces())
	_, frames := drv.Frame(w)
	assert.Positive(t, frames)
}

func TestContextLossRecoveryFailure(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	errs := make(chan error, 4)
	v := New(drv)
	require.NoError(t, v.SetErrorHandler(func(err error) { errs <- err }))
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)
	show(t, drv, v)

	drv.FailNext("eglCreateContext", egl.BAD_ALLOC)
	require.NoError(t, v.QueueEvent(drv.LoseContexts))
	v.RequestRender()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, egl.ErrContextCreationFailed)
	case <-time.After(timeout):
		t.Fatal("failed recreation not reported")
	}

	// The next wakeup retries.
	v.RequestRender()
	waitFor(t, func() bool { return r.count("created") == 2 })
	waitFor(t, func() bool { return r.count("draw") >= 3 })
	drain(t, v)
	assert.Empty(t, errs)
	assert.Equal(t, 1, drv.LiveContexts())
}

func TestContextLossOnMakeCurrent(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	var errs []error
	v := New(drv, PreserveContextOnPause(true))
	require.NoError(t, v.SetErrorHandler(func(err error) { errs = append(errs, err) }))
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)
	w := show(t, drv, v)

	v.OnPause()
	drv.LoseContexts()
	v.OnResume()
	v.SurfaceCreated(w)
	v.RequestRender()
	drain(t, v)
	assert.Equal(t, []string{"created", "changed 64x64", "draw", "created", "draw"}, r.Events())
	assert.Empty(t, errs, "context loss reported as an error")
	assert.Equal(t, 1, drv.LiveContexts())
}

func TestRenderWhenDirty(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)
	w := drv.NewWindow(64, 64)
	v.SurfaceCreated(w)
	drain(t, v)
	assert.Zero(t, r.count("draw"), "drew without a size")

	// A size change draws a frame by itself.
	v.SurfaceChanged(0, 64, 64)
	drain(t, v)
	assert.Equal(t, 1, r.count("draw"))

	v.RequestRender()
	drain(t, v)
	assert.Equal(t, 2, r.count("draw"))

	// Requests queued back to back are coalesced.
	open := gate(t, v)
	for i := 0; i < 5; i++ {
		v.RequestRender()
	}
	assert.Equal(t, 1, v.renderLoop().queue.len())
	open()
	drain(t, v)
	assert.Equal(t, 3, r.count("draw"))

	drain(t, v)
	assert.Equal(t, 3, r.count("draw"), "drew without a request")
}

func TestRenderContinuously(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)
	show(t, drv, v)
	require.NoError(t, v.SetRenderMode(RenderContinuously))
	waitFor(t, func() bool { return r.count("draw") >= 10 })

	require.NoError(t, v.SetRenderMode(RenderWhenDirty))
	drain(t, v)
	n := r.count("draw")
	drain(t, v)
	assert.Equal(t, n, r.count("draw"))
	assert.Equal(t, 1, r.count("created"))
}

func TestContinuousWithoutSurface(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r, Mode(RenderContinuously))
	drain(t, v)
	v.SurfaceChanged(0, 64, 64)
	drain(t, v)
	assert.Empty(t, r.Events())
}

func TestSurfaceDestroyed(t *testing.T) {
	for _, multiple := range []bool{true, false} {
		t.Run(fmt.Sprintf("multiple=%v", multiple), func(t *testing.T) {
			var opts []soft.Option
			if !multiple {
				opts = append(opts, soft.WithSingleContext())
			}
			drv := soft.New(opts...)
			r := new(recorder)
			v := start(t, drv, r)
			w := show(t, drv, v)

			v.SurfaceDestroyed()
			assert.Zero(t, drv.LiveSurfaces())
			// The window may be released as soon as SurfaceDestroyed
			// returns.
			drv.DestroyWindow(w)
			v.RequestRender()
			drain(t, v)
			assert.Equal(t, 1, r.count("draw"))

			// The request made without a surface is still pending.
			v.SurfaceCreated(drv.NewWindow(64, 64))
			drain(t, v)
			assert.Equal(t, 2, r.count("draw"))
			created := 1
			if !multiple {
				created = 2
			}
			assert.Equal(t, created, r.count("created"))
		})
	}
}

func TestStaleSurface(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)
	w := show(t, drv, v)

	// The window goes away without the host telling the view.
	drv.DestroyWindow(w)
	v.RequestRender()
	drain(t, v)
	assert.Equal(t, 2, r.count("draw"))
	assert.Zero(t, drv.LiveSurfaces())
	v.RequestRender()
	drain(t, v)
	assert.Equal(t, 2, r.count("draw"))

	v.SurfaceCreated(drv.NewWindow(64, 64))
	drain(t, v)
	assert.Equal(t, 3, r.count("draw"))
	assert.Equal(t, 1, r.count("created"), "context recreated for a new surface")
}

func TestSurfaceRedrawNeeded(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)

	// Without a surface the request completes right away.
	v.SurfaceRedrawNeeded()
	assert.Zero(t, r.count("draw"))

	show(t, drv, v)
	v.SurfaceRedrawNeeded()
	assert.Equal(t, 2, r.count("draw"))

	finished := make(chan int, 1)
	v.SurfaceRedrawNeededAsync(func() { finished <- r.count("draw") })
	select {
	case n := <-finished:
		assert.Equal(t, 3, n)
	case <-time.After(timeout):
		t.Fatal("finish not called")
	}

	v.Detach()
	called := false
	v.SurfaceRedrawNeededAsync(func() { called = true })
	assert.True(t, called)
}

func TestCreationFailures(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	var (
		mu   sync.Mutex
		errs []error
	)
	v := New(drv)
	require.NoError(t, v.SetErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}))
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)

	drv.FailNext("eglCreateWindowSurface", egl.BAD_NATIVE_WINDOW)
	w := drv.NewWindow(64, 64)
	v.SurfaceCreated(w)
	v.SurfaceChanged(0, 64, 64)
	v.RequestRender()
	drain(t, v)
	assert.Empty(t, r.Events())
	mu.Lock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], egl.ErrSurfaceCreationFailed)
	mu.Unlock()

	// Resuming retries with the known window.
	v.OnResume()
	drain(t, v)
	assert.Equal(t, []string{"created", "changed 64x64", "draw"}, r.Events())
}

func TestNoMatchingConfig(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	errs := make(chan error, 4)
	v := New(drv)
	require.NoError(t, v.SetConfigSpec(10, 10, 10, 2, 0, 0))
	require.NoError(t, v.SetErrorHandler(func(err error) { errs <- err }))
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)

	show(t, drv, v)
	assert.Empty(t, r.Events())
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, egl.ErrNoMatchingConfig)
	default:
		t.Fatal("no error reported")
	}
}

type nilSurfaceFactory struct {
	defaultSurfaceFactory
	fail int
}

func (f *nilSurfaceFactory) CreateWindowSurface(env *egl.Environment, cfg *egl.SurfaceConfig, win egl.NativeWindowType) (*egl.Surface, error) {
	if f.fail > 0 {
		f.fail--
		return nil, nil
	}
	return f.defaultSurfaceFactory.CreateWindowSurface(env, cfg, win)
}

func TestNilSurface(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	errs := make(chan error, 4)
	v := New(drv)
	require.NoError(t, v.SetWindowSurfaceFactory(&nilSurfaceFactory{fail: 1}))
	require.NoError(t, v.SetErrorHandler(func(err error) { errs <- err }))
	require.NoError(t, v.SetRenderer(r))
	t.Cleanup(v.Detach)

	w := show(t, drv, v)
	assert.Empty(t, r.Events())
	assert.ErrorIs(t, <-errs, egl.ErrSurfaceCreationFailed)

	v.SurfaceCreated(w)
	drain(t, v)
	assert.Equal(t, []string{"created", "changed 64x64", "draw"}, r.Events())
}

func TestQueueEventOrder(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r)
	show(t, drv, v)

	var order []string
	require.NoError(t, v.QueueEvent(func() { order = append(order, "event 1") }))
	v.RequestRender()
	require.NoError(t, v.QueueEvent(func() { order = append(order, fmt.Sprintf("event 2 after %d draws", r.count("draw"))) }))
	drain(t, v)
	assert.Equal(t, []string{"event 1", "event 2 after 2 draws"}, order)
}

func TestShutdownRunsQueuedEvents(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := New(drv)
	require.NoError(t, v.SetRenderer(r))
	show(t, drv, v)

	l := v.renderLoop()
	open := gate(t, v)
	ran := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, v.QueueEvent(func() { ran++ }))
	}
	detached := make(chan struct{})
	go func() {
		defer close(detached)
		v.Detach()
	}()
	waitQueued(t, v, 4)
	// Commands queued behind the shutdown are acknowledged.
	paused := make(chan struct{})
	go func() {
		defer close(paused)
		l.postWait(command{kind: cmdPause})
	}()
	open()
	<-detached
	<-paused
	assert.Equal(t, 3, ran)
	assert.Zero(t, drv.LiveContexts())
	assert.Zero(t, drv.LiveSurfaces())
	assert.Equal(t, 1, drv.Stats().Terminations)
}

func TestDetachAttach(t *testing.T) {
	drv := soft.New()
	r := new(recorder)
	v := start(t, drv, r, Mode(RenderWhenDirty))
	w := show(t, drv, v)
	v.Detach()
	v.Detach()
	assert.Zero(t, drv.LiveContexts())

	v.Attach()
	v.SurfaceCreated(w)
	v.SurfaceChanged(0, 64, 64)
	drain(t, v)
	assert.Equal(t, []string{"created", "changed 64x64", "draw", "created", "changed 64x64", "draw"}, r.Events())
	assert.Equal(t, 2, drv.Stats().Initializations)
}

func TestSharedEnvironment(t *testing.T) {
	drv := soft.New()
	env, err := egl.Open(drv, egl.DefaultDisplay)
	require.NoError(t, err)
	var views []*View
	for i := 0; i < 2; i++ {
		v := New(drv, Environment(env))
		require.NoError(t, v.SetRenderer(new(recorder)))
		show(t, drv, v)
		views = append(views, v)
	}
	assert.Equal(t, 1, drv.Stats().Initializations)
	assert.Equal(t, 2, drv.LiveContexts())
	for _, v := range views {
		v.Detach()
	}
	assert.Zero(t, drv.Stats().Terminations, "shared display terminated by a view")
	env.Release()
	assert.Equal(t, 1, drv.Stats().Terminations)
}

func TestClientVersion(t *testing.T) {
	for _, test := range []struct {
		version int
		want    string
	}{
		{0, "OpenGL ES 2.0 soft"},
		{2, "OpenGL ES 2.0 soft"},
		{3, "OpenGL ES 3.0 soft"},
	} {
		drv := soft.New()
		versions := make(chan string, 1)
		r := &recorder{created: func(gl gles.Functions, cfg *egl.SurfaceConfig) {
			versions <- gl.GetString(gles.VERSION)
		}}
		v := start(t, drv, r, ClientVersion(test.version))
		show(t, drv, v)
		assert.Equal(t, test.want, <-versions, "client version %d", test.version)
	}
}
