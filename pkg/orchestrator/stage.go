// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/pywinbuild/internal/cmdexec"
)

// Stage is a step of the packaging pipeline. Stages run in declaration order.
type Stage int

const (
	StageConfigure Stage = iota
	StageTranslate
	StagePrepare
	StagePackage
	StagePublish
)

func (s Stage) String() string {
	switch s {
	case StageConfigure:
		return "configure"
	case StageTranslate:
		return "translate"
	case StagePrepare:
		return "prepare"
	case StagePackage:
		return "package"
	case StagePublish:
		return "publish"
	default:
		return "unknown"
	}
}

// StageError is a fatal pipeline failure.
type StageError struct {
	Stage Stage
	Err   error
	// Hint tells the user how to recover.
	Hint string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RemediationHint returns Hint.
func (e *StageError) RemediationHint() string { return e.Hint }

// ExitCode is the process status the failure should produce: the packaging
// tool's own exit code when it has one, 1 otherwise.
func (e *StageError) ExitCode() int {
	if e.Stage == StagePackage {
		if code := cmdexec.ExitCode(e.Err); code > 0 {
			return code
		}
	}
	return 1
}

// Timings records how long each stage with external work took.
type Timings struct {
	Prepare time.Duration
	Package time.Duration
	Publish time.Duration
}

// Total is the sum of all stage durations.
func (t Timings) Total() time.Duration {
	return t.Prepare + t.Package + t.Publish
}
