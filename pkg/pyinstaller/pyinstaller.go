// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package pyinstaller builds PyInstaller command lines.
package pyinstaller

import (
	"github.com/pkg/errors"
)

// Options selects the PyInstaller flags for a build.
// Paths are passed through verbatim and must already be in the form the
// PyInstaller process expects (e.g. Wine drive paths).
type Options struct {
	// Entry is the script to package, relative to the working directory.
	Entry string
	// Name is the base name of the produced executable.
	Name string
	// OneFile bundles everything into a single executable.
	OneFile bool
	// Windowed suppresses the console window.
	Windowed bool
	// Clean removes PyInstaller's cache before building.
	Clean bool
	// NoConfirm replaces the output directory without asking.
	NoConfirm bool
	// CollectAll names packages whose submodules, data and binaries are all bundled.
	CollectAll []string
	// DistPath, WorkPath and SpecPath override PyInstaller's output directories.
	DistPath string
	WorkPath string
	SpecPath string
}

// GUIOneFile returns the options of a single-file, console-less, clean and
// non-interactive build.
func GUIOneFile(entry, name string, collectAll []string) Options {
	return Options{
		Entry:      entry,
		Name:       name,
		OneFile:    true,
		Windowed:   true,
		Clean:      true,
		NoConfirm:  true,
		CollectAll: collectAll,
	}
}

// Args renders the options as a PyInstaller argument list.
func (o Options) Args() ([]string, error) {
	if o.Entry == "" {
		return nil, errors.New("entry script is required")
	}
	var args []string
	for _, f := range []struct {
		on   bool
		flag string
	}{
		{o.OneFile, "--onefile"},
		{o.Windowed, "--noconsole"},
		{o.Clean, "--clean"},
		{o.NoConfirm, "--noconfirm"},
	} {
		if f.on {
			args = append(args, f.flag)
		}
	}
	if o.Name != "" {
		args = append(args, "--name", o.Name)
	}
	for _, pkg := range o.CollectAll {
		args = append(args, "--collect-all", pkg)
	}
	for _, d := range []struct{ flag, val string }{
		{"--distpath", o.DistPath},
		{"--workpath", o.WorkPath},
		{"--specpath", o.SpecPath},
	} {
		if d.val != "" {
			args = append(args, d.flag, d.val)
		}
	}
	return append(args, o.Entry), nil
}
