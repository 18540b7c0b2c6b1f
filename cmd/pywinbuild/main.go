// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// pywinbuild packages a Python GUI application into a Windows executable
// by running PyInstaller under Wine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/pywinbuild/internal/cli"
	"github.com/google/pywinbuild/internal/command/build"
	"github.com/google/pywinbuild/internal/command/showconfig"
	"github.com/google/pywinbuild/internal/command/translate"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pywinbuild [subcommand]",
	Short: "Cross-compile a Python GUI application into a Windows executable",
	// Silence errors because we will print the error ourselves in main.
	SilenceErrors: true,
	// Don't show usage for every error.
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(build.Command())
	rootCmd.AddCommand(translate.Command())
	rootCmd.AddCommand(showconfig.Command())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(cli.ExitCode(err))
	}
}
