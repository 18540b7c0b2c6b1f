// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package wine runs Windows programs inside a Wine prefix.
package wine

import (
	"context"
	"fmt"
	"io"

	"github.com/google/pywinbuild/internal/cmdexec"
	"github.com/pkg/errors"
)

// Prefix is a Wine prefix and the tools used to drive it.
type Prefix struct {
	// Dir is the native path of the prefix (WINEPREFIX).
	Dir string
	// Arch is the prefix architecture (WINEARCH), e.g. "win64".
	Arch string
	// Wine and Wineboot name the executables; they default to "wine" and "wineboot".
	Wine     string
	Wineboot string
	// Executor runs the commands.
	Executor cmdexec.CommandExecutor
	// Output and ErrOutput receive the commands' stdout and stderr.
	Output    io.Writer
	ErrOutput io.Writer
}

// Env returns the variables selecting this prefix.
func (p Prefix) Env() []string {
	env := []string{"WINEPREFIX=" + p.Dir}
	if p.Arch != "" {
		env = append(env, "WINEARCH="+p.Arch)
	}
	return env
}

// Boot creates the prefix if needed and brings it up to date.
func (p Prefix) Boot(ctx context.Context) error {
	if err := p.Executor.Execute(ctx, p.opts(""), or(p.Wineboot, "wineboot"), "-u"); err != nil {
		return errors.Wrapf(err, "wineboot failed for WINEPREFIX=%s", p.Dir)
	}
	return nil
}

// Run executes a Windows program in the prefix. dir is the native working
// directory; Wine exposes it to the program as its current directory.
func (p Prefix) Run(ctx context.Context, dir, program string, args ...string) error {
	argv := append([]string{program}, args...)
	if err := p.Executor.Execute(ctx, p.opts(dir), or(p.Wine, "wine"), argv...); err != nil {
		return errors.Wrapf(err, "running %s under wine", program)
	}
	return nil
}

// ResetHint is the command that recreates a broken prefix from scratch.
func (p Prefix) ResetHint() string {
	return fmt.Sprintf("rm -rf %q && WINEPREFIX=%q WINEARCH=%s %s -u", p.Dir, p.Dir, or(p.Arch, "win64"), or(p.Wineboot, "wineboot"))
}

func (p Prefix) opts(dir string) cmdexec.CommandOptions {
	return cmdexec.CommandOptions{
		Output:    p.Output,
		ErrOutput: p.ErrOutput,
		Dir:       dir,
		Env:       p.Env(),
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
