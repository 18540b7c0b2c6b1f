// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package fsx provides directory and file helpers for billy filesystems.
package fsx

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotDirectory is returned when a path, or one of its ancestors, exists
// but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// EnsureDir creates dir and any missing ancestors, like `mkdir -p`.
// An existing directory is success. An existing non-directory anywhere
// along the path yields an error wrapping ErrNotDirectory; any other
// failure (e.g. permissions) is returned as-is with context.
func EnsureDir(fsys billy.Filesystem, dir string, perm os.FileMode) error {
	fi, err := fsys.Stat(dir)
	switch {
	case err == nil && fi.IsDir():
		return nil
	case err == nil:
		return errors.Wrapf(ErrNotDirectory, "%s", dir)
	case !errors.Is(err, fs.ErrNotExist):
		return errors.Wrapf(err, "checking %s", dir)
	}
	if blocker := nonDirAncestor(fsys, dir); blocker != "" {
		return errors.Wrapf(ErrNotDirectory, "%s (creating %s)", blocker, dir)
	}
	if err := fsys.MkdirAll(dir, perm); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	return nil
}

// nonDirAncestor returns the nearest ancestor of p that exists as a
// non-directory, or "" if there is none.
func nonDirAncestor(fsys billy.Filesystem, p string) string {
	for cur := path.Dir(p); cur != p; p, cur = cur, path.Dir(cur) {
		fi, err := fsys.Stat(cur)
		if err != nil {
			continue
		}
		if !fi.IsDir() {
			return cur
		}
		return ""
	}
	return ""
}

// Digest returns the hex SHA-256 and size of the file at p.
func Digest(fsys billy.Filesystem, p string) (string, int64, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, errors.Wrapf(err, "reading %s", p)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// WriteFile streams src into dst through a uniquely named temporary file in
// the same directory and renames it into place, so dst never holds a
// partial file. It returns the hex SHA-256 of the bytes written.
func WriteFile(fsys billy.Filesystem, dst string, src io.Reader, perm os.FileMode) (string, error) {
	tmp := path.Join(path.Dir(dst), "."+path.Base(dst)+"."+uuid.New().String()+".tmp")
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", tmp)
	}
	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, h), src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fsys.Remove(tmp)
		return "", errors.Wrapf(err, "writing %s", tmp)
	}
	if err := fsys.Rename(tmp, dst); err != nil {
		fsys.Remove(tmp)
		return "", errors.Wrapf(err, "renaming %s to %s", tmp, dst)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
