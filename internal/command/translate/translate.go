// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"unicode"

	"github.com/google/pywinbuild/internal/cli"
	"github.com/google/pywinbuild/pkg/winepath"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the translate command.
type Config struct {
	Paths   []string
	Reverse bool
	Drive   string
	Root    string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if len(c.Paths) == 0 {
		return errors.New("at least one path is required")
	}
	if r := []rune(c.Drive); len(r) != 1 || !unicode.IsLetter(r[0]) {
		return errors.Errorf("drive must be a single letter, got %q", c.Drive)
	}
	if !filepath.IsAbs(c.Root) {
		return errors.Errorf("root %q must be absolute", c.Root)
	}
	return nil
}

func (c Config) translator() winepath.Translator {
	return winepath.Translator{Drive: []rune(c.Drive)[0], Root: c.Root}
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{}, nil
}

// Handler prints each path in the other convention, one per line.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	t := cfg.translator()
	for _, p := range cfg.Paths {
		convert := t.ToWindows
		if cfg.Reverse {
			convert = t.ToNative
		}
		out, err := convert(p)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(deps.IO.Out, out)
	}
	return &cli.NoOutput{}, nil
}

func parseArgs(cfg *Config, args []string) error {
	cfg.Paths = args
	return nil
}

// Command creates a new translate command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "translate [--reverse] <path>...",
		Short: "Translate native paths to Wine drive paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: cli.RunE(
			&cfg,
			parseArgs,
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.BoolVar(&cfg.Reverse, "reverse", false, "translate Wine paths back to native paths")
	set.StringVar(&cfg.Drive, "drive", string(winepath.Default.Drive), "the Wine drive letter")
	set.StringVar(&cfg.Root, "root", winepath.Default.Root, "the native directory mapped to the drive")
	return set
}
