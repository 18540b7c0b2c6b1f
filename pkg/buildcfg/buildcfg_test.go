// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package buildcfg

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults("/home/dev", "/src/chroma")
	want := Config{
		ProjectDir:  "/src/chroma",
		WinePrefix:  "/home/dev/.wine_test",
		WineArch:    Win64,
		DistDir:     "/tmp/dist_win",
		BuildDir:    "/tmp/pyi_build",
		SpecDir:     "/tmp/pyi_spec",
		ShareDir:    "/mnt/hgfs/share",
		ExeName:     "chroma_monitor.exe",
		Entry:       "main.py",
		Name:        "chroma_monitor",
		CollectAll:  []string{"PySide6", "cv2"},
		WineBin:     "wine",
		WinebootBin: "wineboot",
		PyInstaller: "pyinstaller",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Defaults() mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.ArtifactPath(); got != "/tmp/dist_win/chroma_monitor.exe" {
		t.Errorf("ArtifactPath() = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	// Mutating the defaults must not leak into the next call.
	cfg.CollectAll[0] = "changed"
	if Defaults("/h", "/p").CollectAll[0] != "PySide6" {
		t.Error("Defaults() shares the CollectAll slice")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults("/home/dev", "/src")
	cfg.ApplyEnv(lookupMap(map[string]string{
		EnvWinePrefix: "/opt/prefix",
		EnvWineArch:   "win32",
		EnvDistDir:    "/out/dist",
		EnvBuildDir:   "",
		EnvShareDir:   "/srv/share",
		EnvExeName:    "app.exe",
		EnvCollectAll: " numpy, ,mss ",
	}))
	if cfg.WinePrefix != "/opt/prefix" || cfg.WineArch != Win32 || cfg.DistDir != "/out/dist" {
		t.Errorf("ApplyEnv() did not apply overrides: %+v", cfg)
	}
	if cfg.BuildDir != DefaultBuildDir {
		t.Errorf("empty BUILD_DIR should keep default, got %q", cfg.BuildDir)
	}
	if cfg.ShareDir != "/srv/share" || cfg.ExeName != "app.exe" {
		t.Errorf("share overrides not applied: %q, %q", cfg.ShareDir, cfg.ExeName)
	}
	if diff := cmp.Diff([]string{"numpy", "mss"}, cfg.CollectAll); diff != "" {
		t.Errorf("CollectAll mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad arch", func(c *Config) { c.WineArch = "arm64" }, true},
		{"missing prefix", func(c *Config) { c.WinePrefix = "" }, true},
		{"missing entry", func(c *Config) { c.Entry = "" }, true},
		{"name with separator", func(c *Config) { c.Name = "a/b" }, true},
		{"exe name dot dot", func(c *Config) { c.ExeName = ".." }, true},
		{"exe name with backslash", func(c *Config) { c.ExeName = `x\y.exe` }, true},
		{"no collect all", func(c *Config) { c.CollectAll = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults("/home/dev", "/src")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	want := &Profile{
		Entry:      "app.py",
		Name:       "viewer",
		CollectAll: []string{"numpy"},
		WineArch:   Win32,
	}
	tests := []struct {
		name    string
		file    string
		data    string
		want    *Profile
		wantErr bool
	}{
		{
			name: "yaml",
			file: "profile.yaml",
			data: "entry: app.py\nname: viewer\ncollect_all: [numpy]\nwine_arch: win32\n",
			want: want,
		},
		{
			name: "toml",
			file: "profile.TOML",
			data: "entry = \"app.py\"\nname = \"viewer\"\ncollect_all = [\"numpy\"]\nwine_arch = \"win32\"\n",
			want: want,
		},
		{
			name: "empty yaml",
			file: "p.yml",
			data: "# nothing here\n",
			want: &Profile{},
		},
		{
			name:    "unknown yaml key",
			file:    "p.yaml",
			data:    "entrypoint: app.py\n",
			wantErr: true,
		},
		{
			name:    "unknown toml key",
			file:    "p.toml",
			data:    "entrypoint = \"app.py\"\n",
			wantErr: true,
		},
		{
			name:    "unknown extension",
			file:    "p.json",
			data:    "{}",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfile(tt.file, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProfile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseProfile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsProfileName(t *testing.T) {
	for name, want := range map[string]bool{
		"win.yaml":       true,
		"win.YML":        true,
		"conf/win.toml":  true,
		"win.json":       false,
		"profile":        false,
		"archive.yaml.x": false,
	} {
		if got := IsProfileName(name); got != want {
			t.Errorf("IsProfileName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"src/chroma/.env":         {Data: []byte("DIST_DIR=/from/dotenv\nSHARE_DIR=/dotenv/share\n")},
		"src/chroma/profile.yaml": {Data: []byte("name: viewer\nexe_name: viewer.exe\nshare_dir: /profile/share\n")},
	}
	t.Run("precedence", func(t *testing.T) {
		cfg, err := Load(LoadOptions{
			Home:        "/home/dev",
			ProjectDir:  "/src/chroma",
			ProfilePath: "/src/chroma/profile.yaml",
			Lookup:      lookupMap(map[string]string{EnvShareDir: "/env/share", EnvDistDir: ""}),
			FS:          fsys,
		})
		if err != nil {
			t.Fatalf("Load() = %v", err)
		}
		if cfg.Name != "viewer" || cfg.ExeName != "viewer.exe" {
			t.Errorf("profile not applied: %+v", cfg)
		}
		if cfg.DistDir != "/from/dotenv" {
			t.Errorf("DistDir = %q, want value from .env", cfg.DistDir)
		}
		if cfg.ShareDir != "/env/share" {
			t.Errorf("ShareDir = %q, process env should win", cfg.ShareDir)
		}
		if cfg.ArtifactPath() != "/from/dotenv/viewer.exe" {
			t.Errorf("ArtifactPath() = %q", cfg.ArtifactPath())
		}
	})
	t.Run("no dotenv no profile", func(t *testing.T) {
		cfg, err := Load(LoadOptions{
			Home:       "/home/dev",
			ProjectDir: "/elsewhere",
			Lookup:     lookupMap(nil),
			FS:         fsys,
		})
		if err != nil {
			t.Fatalf("Load() = %v", err)
		}
		if diff := cmp.Diff(Defaults("/home/dev", "/elsewhere"), cfg); diff != "" {
			t.Errorf("Load() mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("missing profile", func(t *testing.T) {
		_, err := Load(LoadOptions{
			Home:        "/home/dev",
			ProjectDir:  "/src/chroma",
			ProfilePath: "/src/chroma/missing.yaml",
			Lookup:      lookupMap(nil),
			FS:          fsys,
		})
		if err == nil {
			t.Error("Load() expected error for missing profile")
		}
	})
}
