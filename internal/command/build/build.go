// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/pywinbuild/internal/cli"
	"github.com/google/pywinbuild/internal/cmdexec"
	"github.com/google/pywinbuild/pkg/buildcfg"
	"github.com/google/pywinbuild/pkg/orchestrator"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the build command.
type Config struct {
	ProjectDir  string
	ProfilePath string
	ShareDir    string
	ExeName     string
	SkipPublish bool
	NoBoot      bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.ProfilePath != "" && !buildcfg.IsProfileName(c.ProfilePath) {
		return errors.Errorf("profile %s must be a .yaml, .yml or .toml file", c.ProfilePath)
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO       cli.IO
	Executor cmdexec.CommandExecutor
	// FS holds the project, the working directories and local shares.
	FS billy.Filesystem
	// Env looks up environment variables.
	Env buildcfg.LookupFunc
	// ReadFS, if set, is used to read the profile and .env files.
	ReadFS fs.ReadFileFS
	// Home overrides the user's home directory.
	Home string
	// Publishers overrides publisher selection.
	Publishers orchestrator.PublisherFunc
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{
		Executor: cmdexec.NewRealCommandExecutor(),
		FS:       osfs.New("/"),
		Env:      os.LookupEnv,
	}, nil
}

// Handler resolves the build configuration and runs the pipeline.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*orchestrator.Result, error) {
	bc, err := buildcfg.Load(buildcfg.LoadOptions{
		Home:        deps.Home,
		ProjectDir:  cfg.ProjectDir,
		ProfilePath: cfg.ProfilePath,
		Lookup:      deps.Env,
		FS:          deps.ReadFS,
	})
	if err != nil {
		return nil, cli.UsageError{Err: err}
	}
	if cfg.ShareDir != "" {
		bc.ShareDir = cfg.ShareDir
	}
	if cfg.ExeName != "" {
		bc.ExeName = cfg.ExeName
	}
	res, err := orchestrator.Run(ctx, bc, orchestrator.Options{
		SkipBoot:    cfg.NoBoot,
		SkipPublish: cfg.SkipPublish,
	}, orchestrator.Deps{
		Executor:   deps.Executor,
		FS:         deps.FS,
		Publishers: deps.Publishers,
		Out:        deps.IO.Out,
		Err:        deps.IO.Err,
	})
	if err != nil {
		return nil, err
	}
	t := res.Timings
	log.Printf("Finished in %s (prepare %s, package %s, publish %s)", t.Total(), t.Prepare, t.Package, t.Publish)
	return res, nil
}

// Command creates a new build command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "build [--project-dir <dir>] [--profile <file>] [--share-dir <dir>] [--exe-name <name>]",
		Short: "Package the project into a Windows executable and publish it",
		Long: `Package the project's entry script into a single-file windowed Windows
executable with PyInstaller running under Wine, then copy it to the share
directory. A failure to publish is reported as a warning and does not fail
the build.`,
		Args: cobra.NoArgs,
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
	set.StringVar(&cfg.ShareDir, "share-dir", "", "where to copy the executable; a local directory or gs://bucket/prefix (overrides SHARE_DIR)")
	set.StringVar(&cfg.ExeName, "exe-name", "", "file name of the published copy (overrides EXE_NAME)")
	set.BoolVar(&cfg.SkipPublish, "skip-publish", false, "stop after packaging")
	set.BoolVar(&cfg.NoBoot, "no-boot", false, "do not run wineboot; the prefix must already be initialized")
	return set
}
