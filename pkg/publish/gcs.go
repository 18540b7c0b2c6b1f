// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

const exeContentType = "application/vnd.microsoft.portable-executable"

// GCSPublisher uploads to a Cloud Storage object.
type GCSPublisher struct {
	Client   *storage.Client
	Bucket   string
	Object   string
	Progress io.Writer
}

// IsGCSPath reports whether pth is a gs:// URI.
func IsGCSPath(pth string) bool {
	return strings.HasPrefix(pth, "gs://")
}

func gcsParts(pth string) (bucket, object string) {
	pth = strings.TrimPrefix(pth, "gs://")
	pth = strings.TrimLeft(pth, "/")
	delim := strings.IndexRune(pth, '/')
	if delim == -1 {
		return pth, ""
	}
	return pth[:delim], pth[delim+1:]
}

// Prepare implements Publisher. Buckets have no directories to create, so
// this only checks that objects may be written.
func (p *GCSPublisher) Prepare(ctx context.Context) error {
	s, err := p.Client.Bucket(p.Bucket).IAM().TestPermissions(ctx, []string{"storage.objects.create"})
	if err != nil {
		return errors.Wrapf(err, "checking permissions on gs://%s", p.Bucket)
	}
	if len(s) != 1 {
		return errors.Errorf("insufficient GCS write permissions [bucket=%s]", p.Bucket)
	}
	return nil
}

// Publish implements Publisher.
func (p *GCSPublisher) Publish(ctx context.Context, src io.Reader, size int64) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := p.Client.Bucket(p.Bucket).Object(p.Object).NewWriter(ctx)
	w.ContentType = exeContentType
	r, done := withProgress(src, size, p.Progress)
	defer done()
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(w, h), r); err != nil {
		// Cancelling the context before Close aborts the upload.
		cancel()
		w.Close()
		return "", errors.Wrapf(err, "uploading %s", p.Destination())
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "finalizing %s", p.Destination())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Destination implements Publisher.
func (p *GCSPublisher) Destination() string {
	return "gs://" + p.Bucket + "/" + p.Object
}

// Close implements Publisher.
func (p *GCSPublisher) Close() error {
	return p.Client.Close()
}
