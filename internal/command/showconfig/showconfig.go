// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package showconfig

import (
	"context"
	"flag"
	"io/fs"
	"os"

	"github.com/google/pywinbuild/internal/cli"
	"github.com/google/pywinbuild/pkg/buildcfg"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the config command.
type Config struct {
	ProjectDir  string
	ProfilePath string
	Format      string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	switch c.Format {
	case "yaml", "toml":
	default:
		return errors.Errorf("unknown format %q", c.Format)
	}
	if c.ProfilePath != "" && !buildcfg.IsProfileName(c.ProfilePath) {
		return errors.Errorf("profile %s must be a .yaml, .yml or .toml file", c.ProfilePath)
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO     cli.IO
	Env    buildcfg.LookupFunc
	ReadFS fs.ReadFileFS
	Home   string
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{Env: os.LookupEnv}, nil
}

// Handler prints the configuration a build would use.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*buildcfg.Config, error) {
	bc, err := buildcfg.Load(buildcfg.LoadOptions{
		Home:        deps.Home,
		ProjectDir:  cfg.ProjectDir,
		ProfilePath: cfg.ProfilePath,
		Lookup:      deps.Env,
		FS:          deps.ReadFS,
	})
	if err != nil {
		return nil, err
	}
	switch cfg.Format {
	case "toml":
		if err := toml.NewEncoder(deps.IO.Out).Encode(&bc); err != nil {
			return nil, errors.Wrap(err, "encoding config")
		}
	default:
		enc := yaml.NewEncoder(deps.IO.Out)
		enc.SetIndent(2)
		if err := enc.Encode(&bc); err != nil {
			return nil, errors.Wrap(err, "encoding config")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding config")
		}
	}
	if err := bc.Validate(); err != nil {
		return &bc, cli.UsageError{Err: err}
	}
	return &bc, nil
}

// Command creates a new config command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "config [--project-dir <dir>] [--profile <file>] [--format yaml|toml]",
		Short: "Print the resolved build configuration",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			cli.SkipArgs[Config],
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
	set.StringVar(&cfg.ProjectDir, "project-dir", "", "directory holding the entry script (default: the working directory)")
	set.StringVar(&cfg.ProfilePath, "profile", "", "a YAML or TOML file with project overrides")
	set.StringVar(&cfg.Format, "format", "yaml", "output format [yaml, toml]")
	return set
}
