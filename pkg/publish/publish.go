// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package publish delivers built artifacts to a shared location.
package publish

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/pywinbuild/internal/fsx"
	"github.com/pkg/errors"
)

// Publisher copies one artifact to a destination.
type Publisher interface {
	// Prepare makes the destination able to receive the artifact, e.g. by
	// creating its directory.
	Prepare(ctx context.Context) error
	// Publish writes size bytes from src to the destination and returns the
	// hex SHA-256 of what was written.
	Publish(ctx context.Context, src io.Reader, size int64) (string, error)
	// Destination describes where the artifact ends up.
	Destination() string
	Close() error
}

// Options configures the publisher returned by ForDestination.
type Options struct {
	// FS is the local filesystem. Defaults to the host filesystem.
	FS billy.Filesystem
	// Progress, if set, receives a progress bar while copying.
	Progress io.Writer
}

// ForDestination picks a Publisher for dir: gs://bucket/prefix uploads to
// Cloud Storage, anything else is treated as a local directory.
func ForDestination(ctx context.Context, dir, name string, opts Options) (Publisher, error) {
	if IsGCSPath(dir) {
		bucket, prefix := gcsParts(dir)
		if bucket == "" {
			return nil, errors.Errorf("no bucket in %q", dir)
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "creating storage client")
		}
		return &GCSPublisher{
			Client:   client,
			Bucket:   bucket,
			Object:   objectName(prefix, name),
			Progress: opts.Progress,
		}, nil
	}
	fs := opts.FS
	if fs == nil {
		fs = osfs.New("/")
	}
	return &LocalPublisher{FS: fs, Dir: dir, Name: name, Progress: opts.Progress}, nil
}

// Target is where the Publisher chosen by ForDestination for dir delivers
// an artifact called name.
func Target(dir, name string) string {
	if IsGCSPath(dir) {
		bucket, prefix := gcsParts(dir)
		return "gs://" + bucket + "/" + objectName(prefix, name)
	}
	return filepath.Join(dir, name)
}

func objectName(prefix, name string) string {
	return strings.TrimPrefix(strings.TrimSuffix(prefix, "/")+"/"+name, "/")
}

// LocalPublisher copies into a directory on a (possibly mounted) filesystem.
type LocalPublisher struct {
	FS       billy.Filesystem
	Dir      string
	Name     string
	Progress io.Writer
}

// Prepare implements Publisher.
func (p *LocalPublisher) Prepare(context.Context) error {
	return fsx.EnsureDir(p.FS, p.Dir, 0o755)
}

// Publish implements Publisher.
func (p *LocalPublisher) Publish(_ context.Context, src io.Reader, size int64) (string, error) {
	r, done := withProgress(src, size, p.Progress)
	defer done()
	return fsx.WriteFile(p.FS, p.Destination(), r, 0o755)
}

// Destination implements Publisher.
func (p *LocalPublisher) Destination() string {
	return filepath.Join(p.Dir, p.Name)
}

// Close implements Publisher.
func (p *LocalPublisher) Close() error { return nil }

func withProgress(r io.Reader, size int64, w io.Writer) (io.Reader, func()) {
	if w == nil {
		return r, func() {}
	}
	bar := pb.New64(size).SetUnits(pb.U_BYTES)
	bar.Output = w
	bar.ShowSpeed = true
	bar.Start()
	return bar.NewProxyReader(r), bar.Finish
}
