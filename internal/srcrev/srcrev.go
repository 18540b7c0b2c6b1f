// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package srcrev identifies the source revision a build was made from.
package srcrev

import (
	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// Revision describes the checked-out commit of a repository.
type Revision struct {
	Hash  string
	Dirty bool
}

// String returns the short hash, suffixed with "-dirty" for modified trees.
func (r Revision) String() string {
	s := r.Hash
	if len(s) > 12 {
		s = s[:12]
	}
	if r.Dirty {
		s += "-dirty"
	}
	return s
}

// Lookup finds the repository containing dir and returns its HEAD revision.
func Lookup(dir string) (*Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening repository at %s", dir)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "resolving HEAD")
	}
	rev := &Revision{Hash: head.Hash().String()}
	wt, err := repo.Worktree()
	if err != nil {
		return rev, nil
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, "reading worktree status")
	}
	rev.Dirty = !status.IsClean()
	return rev, nil
}
