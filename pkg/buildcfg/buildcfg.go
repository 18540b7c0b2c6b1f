// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package buildcfg resolves the configuration of a Windows packaging run.
package buildcfg

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvWinePrefix  = "WINEPREFIX"
	EnvWineArch    = "WINEARCH"
	EnvDistDir     = "DIST_DIR"
	EnvBuildDir    = "BUILD_DIR"
	EnvSpecDir     = "SPEC_DIR"
	EnvShareDir    = "SHARE_DIR"
	EnvExeName     = "EXE_NAME"
	EnvEntry       = "PYI_ENTRY"
	EnvName        = "PYI_NAME"
	EnvCollectAll  = "PYI_COLLECT_ALL"
	EnvWine        = "WINE"
	EnvWineboot    = "WINEBOOT"
	EnvPyInstaller = "PYINSTALLER"
)

// Arch is the architecture of a Wine prefix.
type Arch string

const (
	Win32 Arch = "win32"
	Win64 Arch = "win64"
)

// Default values for Config fields.
const (
	DefaultPrefixDir   = ".wine_test"
	DefaultArch        = Win64
	DefaultDistDir     = "/tmp/dist_win"
	DefaultBuildDir    = "/tmp/pyi_build"
	DefaultSpecDir     = "/tmp/pyi_spec"
	DefaultShareDir    = "/mnt/hgfs/share"
	DefaultExeName     = "chroma_monitor.exe"
	DefaultEntry       = "main.py"
	DefaultName        = "chroma_monitor"
	DefaultWine        = "wine"
	DefaultWineboot    = "wineboot"
	DefaultPyInstaller = "pyinstaller"
)

// DefaultCollectAll lists the packages bundled with --collect-all by default.
var DefaultCollectAll = []string{"PySide6", "cv2"}

// Config holds every setting of a packaging run.
type Config struct {
	ProjectDir  string   `yaml:"project_dir" toml:"project_dir"`
	WinePrefix  string   `yaml:"wine_prefix" toml:"wine_prefix"`
	WineArch    Arch     `yaml:"wine_arch" toml:"wine_arch"`
	DistDir     string   `yaml:"dist_dir" toml:"dist_dir"`
	BuildDir    string   `yaml:"build_dir" toml:"build_dir"`
	SpecDir     string   `yaml:"spec_dir" toml:"spec_dir"`
	ShareDir    string   `yaml:"share_dir" toml:"share_dir"`
	ExeName     string   `yaml:"exe_name" toml:"exe_name"`
	Entry       string   `yaml:"entry" toml:"entry"`
	Name        string   `yaml:"name" toml:"name"`
	CollectAll  []string `yaml:"collect_all" toml:"collect_all"`
	WineBin     string   `yaml:"wine" toml:"wine"`
	WinebootBin string   `yaml:"wineboot" toml:"wineboot"`
	PyInstaller string   `yaml:"pyinstaller" toml:"pyinstaller"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults(home, projectDir string) Config {
	return Config{
		ProjectDir:  projectDir,
		WinePrefix:  filepath.Join(home, DefaultPrefixDir),
		WineArch:    DefaultArch,
		DistDir:     DefaultDistDir,
		BuildDir:    DefaultBuildDir,
		SpecDir:     DefaultSpecDir,
		ShareDir:    DefaultShareDir,
		ExeName:     DefaultExeName,
		Entry:       DefaultEntry,
		Name:        DefaultName,
		CollectAll:  slices.Clone(DefaultCollectAll),
		WineBin:     DefaultWine,
		WinebootBin: DefaultWineboot,
		PyInstaller: DefaultPyInstaller,
	}
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields of cfg with values found through lookup.
// As with the shell's ${VAR:-default}, an empty value counts as unset.
func (cfg *Config) ApplyEnv(lookup LookupFunc) {
	for key, field := range map[string]*string{
		EnvWinePrefix:  &cfg.WinePrefix,
		EnvDistDir:     &cfg.DistDir,
		EnvBuildDir:    &cfg.BuildDir,
		EnvSpecDir:     &cfg.SpecDir,
		EnvShareDir:    &cfg.ShareDir,
		EnvExeName:     &cfg.ExeName,
		EnvEntry:       &cfg.Entry,
		EnvName:        &cfg.Name,
		EnvWine:        &cfg.WineBin,
		EnvWineboot:    &cfg.WinebootBin,
		EnvPyInstaller: &cfg.PyInstaller,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup(EnvWineArch); ok && v != "" {
		cfg.WineArch = Arch(v)
	}
	if v, ok := lookup(EnvCollectAll); ok && v != "" {
		cfg.CollectAll = SplitList(v)
	}
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (cfg Config) Validate() error {
	switch cfg.WineArch {
	case Win32, Win64:
	default:
		return errors.Errorf("unsupported wine arch %q: expected %q or %q", cfg.WineArch, Win32, Win64)
	}
	for _, f := range []struct{ name, val string }{
		{"project dir", cfg.ProjectDir},
		{"wine prefix", cfg.WinePrefix},
		{"dist dir", cfg.DistDir},
		{"build dir", cfg.BuildDir},
		{"spec dir", cfg.SpecDir},
		{"share dir", cfg.ShareDir},
		{"entry", cfg.Entry},
		{"wine", cfg.WineBin},
		{"wineboot", cfg.WinebootBin},
		{"pyinstaller", cfg.PyInstaller},
	} {
		if f.val == "" {
			return errors.Errorf("%s is required", f.name)
		}
	}
	if err := checkFileName("name", cfg.Name); err != nil {
		return err
	}
	if err := checkFileName("exe name", cfg.ExeName); err != nil {
		return err
	}
	return nil
}

func checkFileName(what, name string) error {
	if name == "" {
		return errors.Errorf("%s is required", what)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Errorf("%s %q must be a plain file name", what, name)
	}
	return nil
}

// ArtifactPath is the native path of the executable PyInstaller produces.
func (cfg Config) ArtifactPath() string {
	return filepath.Join(cfg.DistDir, cfg.Name+".exe")
}
