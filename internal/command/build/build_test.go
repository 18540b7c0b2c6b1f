// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"bytes"
	"context"
	"path"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/google/pywinbuild/internal/cli"
	"github.com/google/pywinbuild/internal/cmdexec"
	"github.com/google/pywinbuild/pkg/orchestrator"
	"github.com/google/pywinbuild/pkg/winepath"
	"github.com/pkg/errors"
)

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "empty config",
			cfg:     Config{},
			wantErr: false,
		},
		{
			name:    "yaml profile",
			cfg:     Config{ProfilePath: "win.yaml"},
			wantErr: false,
		},
		{
			name:    "unsupported profile",
			cfg:     Config{ProfilePath: "win.json"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func testDeps(t *testing.T, env map[string]string, files fstest.MapFS) (*Deps, *cmdexec.MockCommandExecutor) {
	t.Helper()
	fs := memfs.New()
	if err := util.WriteFile(fs, "/src/chroma/main.py", []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mock := cmdexec.NewMockCommandExecutor()
	mock.SetExecuteFunc(func(ctx context.Context, opts cmdexec.CommandOptions, name string, args ...string) error {
		if name != "wine" {
			return nil
		}
		dist, err := winepath.Default.ToNative(args[slices.Index(args, "--distpath")+1])
		if err != nil {
			return err
		}
		exe := args[slices.Index(args, "--name")+1] + ".exe"
		return util.WriteFile(fs, path.Join(dist, exe), []byte("MZ"), 0o755)
	})
	deps := &Deps{
		Executor: mock,
		FS:       fs,
		Env: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		ReadFS: files,
		Home:   "/home/dev",
	}
	return deps, mock
}

func TestHandler(t *testing.T) {
	deps, mock := testDeps(t, map[string]string{"DIST_DIR": "/out/dist"}, fstest.MapFS{
		"win.yaml": {Data: []byte("name: viewer\ncollect_all: [PySide6]\n")},
	})
	var out, errOut bytes.Buffer
	deps.SetIO(cli.IO{Out: &out, Err: &errOut})
	cfg := Config{
		ProjectDir:  "/src/chroma",
		ProfilePath: "win.yaml",
		ShareDir:    "/share",
		ExeName:     "Viewer.exe",
		NoBoot:      true,
	}
	res, err := Handler(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("Handler() = %v", err)
	}
	if diff := cmp.Diff([]string{"wine"}, mock.Names()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if res.ArtifactPath != "/out/dist/viewer.exe" {
		t.Errorf("ArtifactPath = %q", res.ArtifactPath)
	}
	if res.Published != "/share/Viewer.exe" {
		t.Errorf("Published = %q", res.Published)
	}
	if !strings.Contains(out.String(), "/share/Viewer.exe") {
		t.Errorf("stdout %q lacks the published path", out.String())
	}
}

func TestHandlerSkipPublish(t *testing.T) {
	deps, mock := testDeps(t, nil, fstest.MapFS{})
	deps.SetIO(cli.IO{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	res, err := Handler(context.Background(), Config{ProjectDir: "/src/chroma", SkipPublish: true}, deps)
	if err != nil {
		t.Fatalf("Handler() = %v", err)
	}
	if diff := cmp.Diff([]string{"wineboot", "wine"}, mock.Names()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if res.Published != "" {
		t.Errorf("Published = %q, want empty", res.Published)
	}
	if _, err := deps.FS.Stat("/mnt/hgfs/share"); err == nil {
		t.Error("share directory created with --skip-publish")
	}
}

func TestHandlerErrors(t *testing.T) {
	t.Run("bad profile", func(t *testing.T) {
		deps, mock := testDeps(t, nil, fstest.MapFS{"win.toml": {Data: []byte("bogus = 1\n")}})
		deps.SetIO(cli.IO{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
		_, err := Handler(context.Background(), Config{ProjectDir: "/src/chroma", ProfilePath: "win.toml"}, deps)
		var ue cli.UsageError
		if !errors.As(err, &ue) {
			t.Errorf("Handler() = %v, want UsageError", err)
		}
		if len(mock.GetCommands()) != 0 {
			t.Errorf("commands ran: %v", mock.Names())
		}
	})
	t.Run("packaging failure", func(t *testing.T) {
		deps, mock := testDeps(t, nil, fstest.MapFS{})
		mock.SetExecuteFunc(func(_ context.Context, _ cmdexec.CommandOptions, name string, _ ...string) error {
			if name == "wine" {
				return cmdexec.ExitStatus(5)
			}
			return nil
		})
		deps.SetIO(cli.IO{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
		_, err := Handler(context.Background(), Config{ProjectDir: "/src/chroma"}, deps)
		var se *orchestrator.StageError
		if !errors.As(err, &se) {
			t.Fatalf("Handler() = %v, want StageError", err)
		}
		if got := cli.ExitCode(err); got != 5 {
			t.Errorf("ExitCode() = %d, want 5", got)
		}
	})
}
