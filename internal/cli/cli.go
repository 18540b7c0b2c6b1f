// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli wires validated command configs, their dependencies, and
// handlers into cobra commands.
package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Input is a command configuration that can check itself.
type Input interface {
	Validate() error
}

// IO provides output streams for CLI commands.
type IO struct {
	Out io.Writer // stdout
	Err io.Writer // stderr
}

// Deps is a dependency container that accepts the command's streams.
type Deps interface {
	SetIO(IO)
}

// InitDeps initializes dependencies from context.
type InitDeps[D Deps] func(context.Context) (D, error)

// Handler runs a command once its config is validated and its deps exist.
type Handler[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)

// NoOutput is the output of handlers that only produce side effects.
type NoOutput struct{}

// ParseArgs populates an Input from positional arguments.
type ParseArgs[I Input] func(in *I, args []string) error

// SkipArgs is a ParseArgs that sets no arguments.
func SkipArgs[I Input](*I, []string) error {
	return nil
}

// RunE builds a cobra.Command.RunE that parses args into cfg, validates it,
// initializes deps, attaches the command's streams and runs handler.
func RunE[I Input, O any, D Deps](
	cfg *I,
	parseArgs ParseArgs[I],
	initDeps InitDeps[D],
	handler Handler[I, O, D],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(cfg, args); err != nil {
			return err
		}
		if err := (*cfg).Validate(); err != nil {
			return UsageError{err}
		}
		deps, err := initDeps(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
		_, err = handler(cmd.Context(), *cfg, deps)
		return err
	}
}

// UsageError marks an invalid command configuration.
type UsageError struct{ Err error }

func (e UsageError) Error() string { return "invalid arguments: " + e.Err.Error() }

func (e UsageError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit status.
// Errors that carry their own ExitCode method decide for themselves; any
// other non-nil error exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		if code := ec.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

// Hint returns remediation text attached to err, if any.
func Hint(err error) string {
	var h interface{ RemediationHint() string }
	if errors.As(err, &h) {
		return h.RemediationHint()
	}
	return ""
}
