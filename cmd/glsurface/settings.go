// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gioui.org/glsurface/view"
)

// settings are read from flags, GLSURFACE_* environment variables
// and glsurface.toml, in that order of precedence.
type settings struct {
	Mode          string `mapstructure:"mode"`
	Preserve      bool   `mapstructure:"preserve"`
	ClientVersion int    `mapstructure:"client-version"`
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	Frames        int    `mapstructure:"frames"`
	LoseContextAt int    `mapstructure:"lose-context-at"`
	Views         int    `mapstructure:"views"`
	Output        string `mapstructure:"output"`
	Debug         bool   `mapstructure:"debug"`
	LogLevel      string `mapstructure:"log-level"`

	// Config selection, used by the configs command.
	Red     int  `mapstructure:"red"`
	Green   int  `mapstructure:"green"`
	Blue    int  `mapstructure:"blue"`
	Alpha   int  `mapstructure:"alpha"`
	Depth   int  `mapstructure:"depth"`
	Stencil int  `mapstructure:"stencil"`
	Exact   bool `mapstructure:"exact"`
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	v := viper.New()
	v.SetConfigName("glsurface")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		v.SetConfigFile(f)
	}
	v.SetEnvPrefix("GLSURFACE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return settings{}, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return s, nil
}

func (s settings) validate() error {
	if _, err := s.renderMode(); err != nil {
		return err
	}
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("invalid window size %dx%d", s.Width, s.Height)
	case s.Views < 1:
		return fmt.Errorf("invalid number of views: %d", s.Views)
	case s.LoseContextAt < 0:
		return fmt.Errorf("invalid lose-context-at: %d", s.LoseContextAt)
	}
	return nil
}

func (s settings) renderMode() (view.RenderMode, error) {
	switch s.Mode {
	case "", "when-dirty":
		return view.RenderWhenDirty, nil
	case "continuously":
		return view.RenderContinuously, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s.Mode)
}

// logger returns a text logger to stderr at the configured level.
func (s settings) logger() (*slog.Logger, error) {
	var level slog.Level
	if s.LogLevel != "" {
		if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
