// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/egl/soft"
	"gioui.org/glsurface/view"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { view.SetLogger(nil) })
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunLifecycle(t *testing.T) {
	output := filepath.Join(t.TempDir(), "frame.png")
	out, err := execute(t, "run", "--views=2", "--width=32", "--height=16", "--output", output, "--timeout=20s")
	require.NoError(t, err)
	assert.Contains(t, out, "view 0:\n")
	assert.Contains(t, out, "view 1:\n")
	assert.Equal(t, 2, strings.Count(out, "surface changed: 32x16"))
	// Each view loses its context to two pauses.
	assert.Equal(t, 4, strings.Count(out, "surface created: config 2:"))
	assert.Contains(t, out, "contexts: 4 created, 4 destroyed\n")
	assert.Contains(t, out, "surfaces: 4 created, 4 destroyed\n")
	assert.NotContains(t, out, "error:")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestRunContinuousWithContextLoss(t *testing.T) {
	s := settings{
		Mode:          "continuously",
		ClientVersion: 3,
		Width:         8,
		Height:        8,
		Frames:        20,
		LoseContextAt: 5,
		Views:         1,
	}
	require.NoError(t, s.validate())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	var out bytes.Buffer
	require.NoError(t, run(ctx, s, &out))
	got := out.String()
	assert.Equal(t, 2, strings.Count(got, "(OpenGL ES 3.0 soft)"), got)
	assert.Contains(t, got, "draw frame 20\n")
	assert.Contains(t, got, "contexts: 2 created, 2 destroyed\n")
	assert.NotContains(t, got, "error:")
}

func TestConfigs(t *testing.T) {
	out, err := execute(t, "configs")
	require.NoError(t, err)
	assert.Contains(t, out, "* config 2: R8G8B8A0 D16 S0\n")

	out, err = execute(t, "configs", "--red=5", "--green=6", "--blue=5", "--exact")
	require.NoError(t, err)
	assert.Contains(t, out, "* config 4: R5G6B5A0 D16 S0\n")
	assert.Equal(t, 1, strings.Count(out, "*"))

	_, err = execute(t, "configs", "--red=10", "--green=10", "--blue=10")
	assert.ErrorIs(t, err, egl.ErrNoMatchingConfig)
}

func TestListConfigsUninitialized(t *testing.T) {
	drv := soft.New()
	drv.FailNext("eglInitialize", egl.NOT_INITIALIZED)
	err := listConfigs(drv, egl.DefaultConfigSpec, new(bytes.Buffer))
	assert.ErrorIs(t, err, egl.ErrInitializationFailed)
}

func TestSettings(t *testing.T) {
	valid := settings{Width: 1, Height: 1, Views: 1}
	require.NoError(t, valid.validate())
	mode, err := valid.renderMode()
	require.NoError(t, err)
	assert.Equal(t, view.RenderWhenDirty, mode)

	tests := map[string]func(s *settings){
		"mode":            func(s *settings) { s.Mode = "sometimes" },
		"size":            func(s *settings) { s.Height = 0 },
		"views":           func(s *settings) { s.Views = 0 },
		"lose-context-at": func(s *settings) { s.LoseContextAt = -1 },
	}
	for name, mutate := range tests {
		s := valid
		mutate(&s)
		assert.Error(t, s.validate(), name)
	}

	_, err = settings{LogLevel: "loud"}.logger()
	assert.Error(t, err)
	l, err := settings{LogLevel: "debug"}.logger()
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestSettingsFromEnvironment(t *testing.T) {
	t.Setenv("GLSURFACE_CLIENT_VERSION", "3")
	t.Setenv("GLSURFACE_MODE", "continuously")
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--width=7"}))
	s, err := loadSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ClientVersion)
	assert.Equal(t, "continuously", s.Mode)
	assert.Equal(t, 7, s.Width)
	assert.Equal(t, 240, s.Height)
}
