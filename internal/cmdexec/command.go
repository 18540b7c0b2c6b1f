// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cmdexec runs external programs behind an interface so callers can
// be tested without spawning processes.
package cmdexec

import (
	"context"
	"io"
	"log"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// CommandOptions configures command execution
type CommandOptions struct {
	// Output receives stdout (if nil, output is discarded)
	Output io.Writer
	// ErrOutput receives stderr. If nil, stderr goes to Output.
	ErrOutput io.Writer
	// Dir is the directory in which the command is run
	Dir string
	// Env holds KEY=VALUE pairs added on top of the inherited environment
	Env []string
}

// CommandExecutor abstracts command execution for better testability
type CommandExecutor interface {
	// Execute runs a command with the given options, returns error on failure
	// Comparable to exec.CommandContext(...).Run()
	Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error
	// LookPath searches for an executable named file in the directories named by the PATH environment variable
	// Comparable to exec.LookPath()
	LookPath(file string) (string, error)
}

// realCommandExecutor implements CommandExecutor using os/exec
type realCommandExecutor struct{}

// NewRealCommandExecutor creates a new CommandExecutor that uses os/exec
func NewRealCommandExecutor() CommandExecutor {
	return &realCommandExecutor{}
}

// Execute implements CommandExecutor with configurable options
func (r *realCommandExecutor) Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Output != nil {
		cmd.Stdout = opts.Output
		cmd.Stderr = opts.Output
	}
	if opts.ErrOutput != nil {
		cmd.Stderr = opts.ErrOutput
	}
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		// A nil cmd.Env inherits the environment; once set it must be complete.
		cmd.Env = append(cmd.Environ(), opts.Env...)
	}
	log.Print(describe(opts, cmd.String()))
	// Block and wait for completion.
	return cmd.Run()
}

// LookPath implements CommandExecutor
func (r *realCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func describe(opts CommandOptions, cmdline string) string {
	if len(opts.Env) == 0 {
		return cmdline
	}
	return strings.Join(opts.Env, " ") + " " + cmdline
}

// ExitCode extracts the exit code of a failed command from err.
// It returns -1 if err does not carry one (e.g. the binary was not found).
func ExitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
