// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package winepath translates between native Unix paths and the drive-letter
// paths seen by programs running under Wine.
package winepath

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Translator maps a native directory tree onto a Wine drive.
//
// Wine's default prefix exposes the whole host filesystem as Z:, which is
// what Default describes.
type Translator struct {
	// Drive is the drive letter, e.g. 'Z'.
	Drive rune
	// Root is the native directory the drive is mounted at.
	Root string
}

// Default is the Z: -> / mapping every Wine prefix has.
var Default = Translator{Drive: 'Z', Root: "/"}

// ToWindows is shorthand for Default.ToWindows. Default maps the whole
// filesystem, so the translation cannot fail.
func ToWindows(p string) string {
	w, _ := Default.ToWindows(p)
	return w
}

// ToWindows rewrites a native path into the translator's drive convention:
// the drive prefix followed by the path with every '/' replaced by '\'.
//
// When Root is not "/", p must be Root or lie under it and the Root prefix
// is removed first. The input is not otherwise normalized.
func (t Translator) ToWindows(p string) (string, error) {
	if t.Root != "" && t.Root != "/" {
		root := strings.TrimSuffix(t.Root, "/")
		switch {
		case p == root:
			p = "/"
		case strings.HasPrefix(p, root+"/"):
			p = strings.TrimPrefix(p, root)
		default:
			return "", errors.Errorf("path %q is outside %s (mounted as %s)", p, t.Root, t.prefix())
		}
	}
	return t.prefix() + strings.ReplaceAll(p, "/", `\`), nil
}

// ToNative is the inverse of ToWindows for paths on the translator's drive.
func (t Translator) ToNative(p string) (string, error) {
	if len(p) < 2 || p[1] != ':' || unicode.ToUpper(rune(p[0])) != unicode.ToUpper(t.Drive) {
		return "", errors.Errorf("path %q is not on drive %s", p, t.prefix())
	}
	rest := strings.ReplaceAll(p[2:], `\`, "/")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	if t.Root == "" || t.Root == "/" {
		return rest, nil
	}
	if rest == "/" {
		return t.Root, nil
	}
	return strings.TrimSuffix(t.Root, "/") + rest, nil
}

func (t Translator) prefix() string {
	return string(unicode.ToUpper(t.Drive)) + ":"
}
