// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gioui.org/glsurface/egl"
	"gioui.org/glsurface/egl/soft"
)

func newConfigsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List the software display configs for a spec",
		Long:  "Configs lists the candidates eglChooseConfig returns for the requested sizes, in native order. The config a view would choose is marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return listConfigs(soft.New(), s.configSpec(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.Int("red", 8, "red bits")
	f.Int("green", 8, "green bits")
	f.Int("blue", 8, "blue bits")
	f.Int("alpha", 0, "alpha bits")
	f.Int("depth", 16, "minimum depth bits")
	f.Int("stencil", 0, "minimum stencil bits")
	f.Bool("exact", false, "match the color channels exactly")
	f.Int("client-version", 2, "OpenGL ES client version")
	return cmd
}

func (s settings) configSpec() egl.ConfigSpec {
	return egl.ConfigSpec{
		Red: s.Red, Green: s.Green, Blue: s.Blue, Alpha: s.Alpha,
		Depth: s.Depth, Stencil: s.Stencil,
		Exact:          s.Exact,
		RenderableType: egl.RenderableTypeFor(s.ClientVersion),
	}
}

func listConfigs(n egl.Native, spec egl.ConfigSpec, out io.Writer) error {
	env, err := egl.Open(n, egl.DefaultDisplay)
	if err != nil {
		return err
	}
	defer env.Release()
	major, minor, err := env.Initialize()
	if err != nil {
		return err
	}
	cands, err := env.ChooseConfigs(spec.Attribs())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "EGL %d.%d, spec %v, %d candidates\n", major, minor, spec, len(cands))
	chosen := false
	for _, c := range cands {
		mark := " "
		if !chosen && spec.Matches(c) {
			mark = "*"
			chosen = true
		}
		fmt.Fprintf(out, "%s %v\n", mark, c)
	}
	if !chosen {
		return fmt.Errorf("%w for %v", egl.ErrNoMatchingConfig, spec)
	}
	return nil
}
