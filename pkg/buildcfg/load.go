// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package buildcfg

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is read from the project directory when present.
const DotEnvFile = ".env"

// Profile holds project-level overrides stored in a YAML or TOML file.
// Zero values leave the corresponding setting untouched.
type Profile struct {
	Entry      string   `yaml:"entry" toml:"entry"`
	Name       string   `yaml:"name" toml:"name"`
	ExeName    string   `yaml:"exe_name" toml:"exe_name"`
	CollectAll []string `yaml:"collect_all" toml:"collect_all"`
	WineArch   Arch     `yaml:"wine_arch" toml:"wine_arch"`
	ShareDir   string   `yaml:"share_dir" toml:"share_dir"`
}

// IsProfileName reports whether name has an extension ParseProfile accepts.
func IsProfileName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// ParseProfile decodes a profile. The format is chosen from the file name's
// extension.
func ParseProfile(name string, data []byte) (*Profile, error) {
	p := &Profile{}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "decoding yaml profile %s", name)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return nil, errors.Wrapf(err, "decoding toml profile %s", name)
		}
	default:
		return nil, errors.Errorf("unsupported profile format %q", ext)
	}
	return p, nil
}

// Apply overrides cfg with the profile's non-zero fields.
func (p Profile) Apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Entry, p.Entry)
	set(&cfg.Name, p.Name)
	set(&cfg.ExeName, p.ExeName)
	set(&cfg.ShareDir, p.ShareDir)
	if p.WineArch != "" {
		cfg.WineArch = p.WineArch
	}
	if len(p.CollectAll) > 0 {
		cfg.CollectAll = SplitList(strings.Join(p.CollectAll, ","))
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Home is the user's home directory. Defaults to os.UserHomeDir.
	Home string
	// ProjectDir is the directory holding the entry script. Defaults to the
	// working directory.
	ProjectDir string
	// ProfilePath optionally names a profile file.
	ProfilePath string
	// Lookup reads the process environment. Defaults to os.LookupEnv.
	Lookup LookupFunc
	// FS is used to read the profile and .env files. Defaults to the host
	// filesystem.
	FS fs.ReadFileFS
}

// Load resolves a Config: defaults, then the profile, then the environment.
// Variables from the project's .env file are visible only where the
// process environment leaves them unset.
func Load(opts LoadOptions) (Config, error) {
	var err error
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.Home == "" {
		if opts.Home, err = os.UserHomeDir(); err != nil {
			return Config{}, errors.Wrap(err, "locating home directory")
		}
	}
	if opts.ProjectDir == "" {
		if opts.ProjectDir, err = os.Getwd(); err != nil {
			return Config{}, errors.Wrap(err, "locating project directory")
		}
	}
	if opts.ProjectDir, err = filepath.Abs(opts.ProjectDir); err != nil {
		return Config{}, errors.Wrap(err, "resolving project directory")
	}
	readFile := os.ReadFile
	if opts.FS != nil {
		readFile = func(name string) ([]byte, error) {
			return opts.FS.ReadFile(strings.TrimPrefix(name, "/"))
		}
	}
	cfg := Defaults(opts.Home, opts.ProjectDir)
	if opts.ProfilePath != "" {
		data, err := readFile(opts.ProfilePath)
		if err != nil {
			return Config{}, errors.Wrap(err, "reading profile")
		}
		p, err := ParseProfile(opts.ProfilePath, data)
		if err != nil {
			return Config{}, err
		}
		p.Apply(&cfg)
	}
	dotenv, err := readDotEnv(readFile, filepath.Join(opts.ProjectDir, DotEnvFile))
	if err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := opts.Lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return cfg, nil
}

func readDotEnv(readFile func(string) ([]byte, error), name string) (map[string]string, error) {
	data, err := readFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}
	return vars, nil
}
