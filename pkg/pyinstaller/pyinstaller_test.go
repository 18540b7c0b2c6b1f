// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pyinstaller

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		wantErr bool
	}{
		{
			name: "gui one file",
			opts: func() Options {
				o := GUIOneFile("main.py", "chroma_monitor", []string{"PySide6", "cv2"})
				o.DistPath = `Z:\tmp\dist_win`
				o.WorkPath = `Z:\tmp\pyi_build`
				o.SpecPath = `Z:\tmp\pyi_spec`
				return o
			}(),
			want: []string{
				"--onefile", "--noconsole", "--clean", "--noconfirm",
				"--name", "chroma_monitor",
				"--collect-all", "PySide6", "--collect-all", "cv2",
				"--distpath", `Z:\tmp\dist_win`,
				"--workpath", `Z:\tmp\pyi_build`,
				"--specpath", `Z:\tmp\pyi_spec`,
				"main.py",
			},
		},
		{
			name: "entry only",
			opts: Options{Entry: "app.py"},
			want: []string{"app.py"},
		},
		{
			name: "paths with spaces stay single arguments",
			opts: Options{Entry: "main.py", DistPath: `Z:\my dist`},
			want: []string{"--distpath", `Z:\my dist`, "main.py"},
		},
		{
			name:    "missing entry",
			opts:    Options{Name: "x"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Args()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Args() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
