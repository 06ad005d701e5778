// SPDX-License-Identifier: Unlicense OR MIT

// Command glsurface drives views through their lifecycle on the
// software EGL and reports what the renderers observed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "glsurface",
		Short:         "Exercise the render thread lifecycle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "config file (default ./glsurface.toml)")
	cmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newConfigsCmd())
	return cmd
}
