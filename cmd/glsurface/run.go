// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/egl/soft"
	"gioui.org/glsurface/view"
)

func newRunCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive views through a lifecycle scenario",
		Long: `Run drives one or more views sharing a software EGL display.

In when-dirty mode each view is created, resized, drawn, paused,
resumed onto a new window and drawn again. In continuous mode each
view draws the requested number of frames, optionally losing every
context after frame lose-context-at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := s.validate(); err != nil {
				return err
			}
			l, err := s.logger()
			if err != nil {
				return err
			}
			view.SetLogger(l)
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, s, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.String("mode", "when-dirty", "render mode: when-dirty or continuously")
	f.Bool("preserve", false, "preserve the context on pause")
	f.Int("client-version", 2, "OpenGL ES client version, 0 for the EGL default")
	f.Int("width", 320, "window width")
	f.Int("height", 240, "window height")
	f.Int("frames", 60, "frames to draw in continuous mode")
	f.Int("lose-context-at", 0, "lose all contexts after this frame in continuous mode, 0 for never")
	f.Int("views", 1, "number of views sharing the display")
	f.String("output", "", "write the last frame of the first view to this PNG file")
	f.Bool("debug", false, "check GL errors and log GL calls")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "abort after this long")
	return cmd
}

func run(ctx context.Context, s settings, out io.Writer) error {
	mode, err := s.renderMode()
	if err != nil {
		return err
	}
	drv := soft.New()
	env, err := egl.Open(drv, egl.DefaultDisplay)
	if err != nil {
		return err
	}
	defer env.Release()
	if _, _, err := env.Initialize(); err != nil {
		return err
	}

	sessions := make([]*session, s.Views)
	g, ctx := errgroup.WithContext(ctx)
	for i := range sessions {
		ss := newSession(drv, env, s, mode, i == 0)
		sessions[i] = ss
		g.Go(func() error {
			return ss.run(ctx)
		})
	}
	err = g.Wait()
	for i, ss := range sessions {
		fmt.Fprintf(out, "view %d:\n", i)
		for _, e := range ss.r.Events() {
			fmt.Fprintf(out, "  %s\n", e)
		}
	}
	if err != nil {
		return err
	}
	st := drv.Stats()
	fmt.Fprintf(out, "contexts: %d created, %d destroyed\n", st.ContextsCreated, st.ContextsDestroyed)
	fmt.Fprintf(out, "surfaces: %d created, %d destroyed\n", st.SurfacesCreated, st.SurfacesDestroyed)
	fmt.Fprintf(out, "swaps: %d\n", st.Swaps)
	if s.Output == "" {
		return nil
	}
	img, _ := drv.Frame(sessions[0].win)
	if img == nil {
		return fmt.Errorf("no frame presented")
	}
	return writePNG(s.Output, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// session plays the host of one view.
type session struct {
	s    settings
	mode view.RenderMode
	drv  *soft.Driver
	v    *view.View
	r    *traceRenderer
	// loser is set on the session that injects context loss.
	loser bool
	win   egl.NativeWindowType
}

func newSession(drv *soft.Driver, env *egl.Environment, s settings, mode view.RenderMode, loser bool) *session {
	opts := []view.Option{
		view.Environment(env),
		view.Mode(mode),
		view.PreserveContextOnPause(s.Preserve),
		view.ClientVersion(s.ClientVersion),
	}
	if s.Debug {
		opts = append(opts, view.Debug(view.DebugCheckGLError|view.DebugLogGLCalls))
	}
	return &session{
		s:     s,
		mode:  mode,
		drv:   drv,
		v:     view.New(drv, opts...),
		r:     newTraceRenderer(),
		loser: loser,
	}
}

func (ss *session) run(ctx context.Context) error {
	if err := ss.v.SetErrorHandler(func(err error) { ss.r.record("error: %v", err) }); err != nil {
		return err
	}
	if err := ss.v.SetRenderer(ss.r); err != nil {
		return err
	}
	defer ss.v.Detach()
	ss.win = ss.drv.NewWindow(ss.s.Width, ss.s.Height)
	if ss.mode == view.RenderContinuously {
		return ss.continuous(ctx)
	}
	return ss.lifecycle(ctx)
}

// lifecycle creates, draws, pauses and resumes onto a new window.
func (ss *session) lifecycle(ctx context.Context) error {
	v := ss.v
	v.SurfaceCreated(ss.win)
	v.SurfaceChanged(0, ss.s.Width, ss.s.Height)
	v.RequestRender()
	v.OnPause()
	v.OnResume()
	ss.win = ss.drv.NewWindow(ss.s.Width, ss.s.Height)
	v.SurfaceCreated(ss.win)
	v.RequestRender()
	if err := ss.sync(ctx); err != nil {
		return err
	}
	v.OnPause()
	v.SurfaceDestroyed()
	return nil
}

func (ss *session) continuous(ctx context.Context) error {
	v := ss.v
	v.SurfaceCreated(ss.win)
	v.SurfaceChanged(0, ss.s.Width, ss.s.Height)
	if k := ss.s.LoseContextAt; ss.loser && k > 0 && k < ss.s.Frames {
		if err := ss.waitFrames(ctx, k); err != nil {
			return err
		}
		if err := v.QueueEvent(ss.drv.LoseContexts); err != nil {
			return err
		}
	}
	if err := ss.waitFrames(ctx, ss.s.Frames); err != nil {
		return err
	}
	if err := v.SetRenderMode(view.RenderWhenDirty); err != nil {
		return err
	}
	v.OnPause()
	v.SurfaceDestroyed()
	return nil
}

// waitFrames waits for n frames.
func (ss *session) waitFrames(ctx context.Context, n int) error {
	for ss.r.Frames() < n {
		select {
		case <-ss.r.tick:
		case <-ctx.Done():
			return fmt.Errorf("waiting for frame %d: %w", n, ctx.Err())
		}
	}
	return nil
}

// sync waits for the commands queued so far to be processed.
func (ss *session) sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := ss.v.QueueEvent(func() { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
