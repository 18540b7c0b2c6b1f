// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator packages a Python application into a Windows
// executable with PyInstaller under Wine and publishes the result.
//
// A run is a linear pipeline: configure, translate paths, prepare the
// environment, package, publish. Failures while preparing or packaging are
// fatal and stop the pipeline; publication failures only produce warnings.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5"
	"github.com/google/pywinbuild/internal/cmdexec"
	"github.com/google/pywinbuild/internal/fsx"
	"github.com/google/pywinbuild/internal/srcrev"
	"github.com/google/pywinbuild/pkg/buildcfg"
	"github.com/google/pywinbuild/pkg/publish"
	"github.com/google/pywinbuild/pkg/pyinstaller"
	"github.com/google/pywinbuild/pkg/wine"
	"github.com/google/pywinbuild/pkg/winepath"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// PublisherFunc returns the publisher for a run's share destination.
type PublisherFunc func(ctx context.Context, cfg buildcfg.Config) (publish.Publisher, error)

// DefaultPublishers selects a publisher from the share directory's form,
// copying local files through fs and drawing progress on progress.
func DefaultPublishers(fs billy.Filesystem, progress io.Writer) PublisherFunc {
	return func(ctx context.Context, cfg buildcfg.Config) (publish.Publisher, error) {
		return publish.ForDestination(ctx, cfg.ShareDir, cfg.ExeName, publish.Options{FS: fs, Progress: progress})
	}
}

// Deps holds the orchestrator's collaborators.
type Deps struct {
	Executor cmdexec.CommandExecutor
	// FS is the host filesystem holding the working directories and the artifact.
	FS         billy.Filesystem
	Publishers PublisherFunc
	Translator winepath.Translator
	Clock      clockwork.Clock
	// Out receives status lines and child stdout; Err receives warnings and child stderr.
	Out io.Writer
	Err io.Writer
}

// Options toggles optional stages.
type Options struct {
	// SkipBoot does not run wineboot. Only safe for prefixes that are
	// already initialized.
	SkipBoot bool
	// SkipPublish stops after packaging.
	SkipPublish bool
}

// Paths holds the Wine-side forms of the paths handed to PyInstaller.
type Paths struct {
	Project string
	Dist    string
	Build   string
	Spec    string
	// Entry is the entry script argument. A plain file name stays relative
	// to the project directory, which is PyInstaller's working directory.
	Entry string
}

// Result describes a successful run.
type Result struct {
	// ArtifactPath is the native path of the built executable.
	ArtifactPath   string
	ArtifactDigest string
	// Published is where the artifact was copied, or "" if it was not.
	Published string
	// Warnings lists non-fatal publication problems.
	Warnings       []string
	SourceRevision string
	Paths          Paths
	Timings        Timings
}

// Run executes the pipeline for cfg.
func Run(ctx context.Context, cfg buildcfg.Config, opts Options, deps Deps) (*Result, error) {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Translator.Drive == 0 {
		deps.Translator = winepath.Default
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Err == nil {
		deps.Err = io.Discard
	}
	if deps.Publishers == nil {
		deps.Publishers = DefaultPublishers(deps.FS, deps.Err)
	}
	r := &runner{cfg: cfg, opts: opts, deps: deps}
	return r.run(ctx)
}

type runner struct {
	cfg  buildcfg.Config
	opts Options
	deps Deps
	res  Result
	// Absolute native forms of the configured paths.
	project, dist, build, spec, entry string
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	if err := r.configure(); err != nil {
		return nil, &StageError{Stage: StageConfigure, Err: err, Hint: "check the environment variables and flags"}
	}
	if err := r.translate(); err != nil {
		return nil, &StageError{
			Stage: StageTranslate,
			Err:   err,
			Hint:  "every path handed to wine must be on the configured drive",
		}
	}
	start := r.deps.Clock.Now()
	if err := r.prepare(ctx); err != nil {
		return nil, err
	}
	r.res.Timings.Prepare = r.deps.Clock.Since(start)
	start = r.deps.Clock.Now()
	if err := r.pkg(ctx); err != nil {
		return nil, err
	}
	r.res.Timings.Package = r.deps.Clock.Since(start)
	if !r.opts.SkipPublish {
		start = r.deps.Clock.Now()
		r.publish(ctx)
		r.res.Timings.Publish = r.deps.Clock.Since(start)
	}
	return &r.res, nil
}

func (r *runner) configure() error {
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	if r.deps.Executor == nil || r.deps.FS == nil {
		return errors.New("executor and filesystem are required")
	}
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(r.cfg.ProjectDir, p)
	}
	r.project = filepath.Clean(r.cfg.ProjectDir)
	if !filepath.IsAbs(r.project) {
		return errors.Errorf("project dir %q must be absolute", r.cfg.ProjectDir)
	}
	r.dist, r.build, r.spec = abs(r.cfg.DistDir), abs(r.cfg.BuildDir), abs(r.cfg.SpecDir)
	r.entry = abs(r.cfg.Entry)
	if !publish.IsGCSPath(r.cfg.ShareDir) {
		r.cfg.ShareDir = abs(r.cfg.ShareDir)
	}
	r.cfg.DistDir = r.dist
	r.res.ArtifactPath = r.cfg.ArtifactPath()
	return nil
}

func (r *runner) translate() error {
	t := r.deps.Translator
	for _, p := range []struct {
		native string
		dst    *string
	}{
		{r.project, &r.res.Paths.Project},
		{r.dist, &r.res.Paths.Dist},
		{r.build, &r.res.Paths.Build},
		{r.spec, &r.res.Paths.Spec},
		{r.entry, &r.res.Paths.Entry},
	} {
		w, err := t.ToWindows(p.native)
		if err != nil {
			return err
		}
		*p.dst = w
	}
	if filepath.Dir(r.entry) == r.project {
		r.res.Paths.Entry = filepath.Base(r.entry)
	}
	return nil
}

func (r *runner) prefix() wine.Prefix {
	return wine.Prefix{
		Dir:       r.cfg.WinePrefix,
		Arch:      string(r.cfg.WineArch),
		Wine:      r.cfg.WineBin,
		Wineboot:  r.cfg.WinebootBin,
		Executor:  r.deps.Executor,
		Output:    r.deps.Out,
		ErrOutput: r.deps.Err,
	}
}

// requireTools checks that the host programs the run needs are installed.
// PyInstaller runs inside the prefix and is not looked up on the host.
func (r *runner) requireTools() error {
	type tool struct{ name, env string }
	tools := []tool{{r.cfg.WineBin, buildcfg.EnvWine}}
	if !r.opts.SkipBoot {
		tools = append(tools, tool{r.cfg.WinebootBin, buildcfg.EnvWineboot})
	}
	for _, t := range tools {
		if _, err := r.deps.Executor.LookPath(t.name); err != nil {
			return &StageError{
				Stage: StagePrepare,
				Err:   errors.Wrapf(err, "locating %s", t.name),
				Hint:  fmt.Sprintf("install wine so that %s is on PATH, or set %s to its location", t.name, t.env),
			}
		}
	}
	return nil
}

func (r *runner) prepare(ctx context.Context) error {
	if err := r.requireTools(); err != nil {
		return err
	}
	for _, dir := range []string{r.dist, r.build, r.spec} {
		if err := fsx.EnsureDir(r.deps.FS, dir, 0o755); err != nil {
			return &StageError{
				Stage: StagePrepare,
				Err:   err,
				Hint:  fmt.Sprintf("make sure %s is a writable directory", dir),
			}
		}
	}
	if r.opts.SkipBoot {
		log.Printf("Skipping wineboot for %s", r.cfg.WinePrefix)
		return nil
	}
	log.Printf("Initializing wine prefix %s (%s)", r.cfg.WinePrefix, r.cfg.WineArch)
	p := r.prefix()
	if err := p.Boot(ctx); err != nil {
		return &StageError{
			Stage: StagePrepare,
			Err:   err,
			Hint:  fmt.Sprintf("wine prefix %s could not be initialized; recreate it with:\n  %s", p.Dir, p.ResetHint()),
		}
	}
	return nil
}

func (r *runner) pkg(ctx context.Context) error {
	if fi, err := r.deps.FS.Stat(r.entry); err != nil || fi.IsDir() {
		return &StageError{
			Stage: StagePackage,
			Err:   errors.Errorf("entry script %s not found", r.entry),
			Hint:  "run from the project directory or pass --project-dir",
		}
	}
	if rev, err := srcrev.Lookup(r.project); err == nil {
		r.res.SourceRevision = rev.String()
		log.Printf("Source revision %s", rev)
	}
	o := pyinstaller.GUIOneFile(r.res.Paths.Entry, r.cfg.Name, r.cfg.CollectAll)
	o.DistPath = r.res.Paths.Dist
	o.WorkPath = r.res.Paths.Build
	o.SpecPath = r.res.Paths.Spec
	args, err := o.Args()
	if err != nil {
		return &StageError{Stage: StagePackage, Err: err}
	}
	if err := r.prefix().Run(ctx, r.project, r.cfg.PyInstaller, args...); err != nil {
		return &StageError{Stage: StagePackage, Err: err, Hint: "see the PyInstaller output above"}
	}
	digest, _, err := fsx.Digest(r.deps.FS, r.res.ArtifactPath)
	if err != nil {
		return &StageError{
			Stage: StagePackage,
			Err:   errors.Wrap(err, "locating built executable"),
			Hint:  fmt.Sprintf("PyInstaller finished but %s is not readable", r.res.ArtifactPath),
		}
	}
	r.res.ArtifactDigest = digest
	fmt.Fprintf(r.deps.Out, "%s %s\n", green("Built:"), r.res.ArtifactPath)
	return nil
}

func (r *runner) publish(ctx context.Context) {
	target := publish.Target(r.cfg.ShareDir, r.cfg.ExeName)
	manual := fmt.Sprintf("copy it manually: cp %q %q", r.res.ArtifactPath, target)
	pub, err := r.deps.Publishers(ctx, r.cfg)
	if err != nil {
		r.warn("cannot publish to %s: %v; %s", r.cfg.ShareDir, err, manual)
		return
	}
	defer pub.Close()
	if err := pub.Prepare(ctx); err != nil {
		r.warn("could not create %s: %v; %s", r.cfg.ShareDir, err, manual)
		return
	}
	f, err := r.deps.FS.Open(r.res.ArtifactPath)
	if err != nil {
		r.warn("could not read %s: %v", r.res.ArtifactPath, err)
		return
	}
	defer f.Close()
	fi, err := r.deps.FS.Stat(r.res.ArtifactPath)
	if err != nil {
		r.warn("could not read %s: %v", r.res.ArtifactPath, err)
		return
	}
	digest, err := pub.Publish(ctx, f, fi.Size())
	if err != nil {
		r.warn("copy to %s failed: %v; %s", pub.Destination(), err, manual)
		return
	}
	if digest != r.res.ArtifactDigest {
		r.warn("copy at %s does not match %s (sha256 %s != %s); %s", pub.Destination(), r.res.ArtifactPath, digest, r.res.ArtifactDigest, manual)
		return
	}
	r.res.Published = pub.Destination()
	fmt.Fprintf(r.deps.Out, "%s %s\n", green("Copied to:"), r.res.Published)
}

func (r *runner) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Warnings = append(r.res.Warnings, msg)
	fmt.Fprintf(r.deps.Err, "%s %s\n", yellow("Warning:"), msg)
}
