// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context must not be nil")

	// ErrInvalidSession is returned when resuming a session that has no
	// checkpoint or has already completed. Caller-facing.
	ErrInvalidSession = errors.New("invalid session")

	// ErrSessionBusy is returned when a second call arrives for a session
	// that already has a call in flight. Caller-facing.
	ErrSessionBusy = errors.New("session busy")

	// ErrCheckpointNotFound is returned by CheckpointStore.Load when no
	// checkpoint exists for the session id.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrCheckpointCorrupt is returned when a checkpoint fails checksum
	// verification.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt: checksum mismatch")

	// ErrCheckpointVersionMismatch is returned when a checkpoint was written
	// by an incompatible format version.
	ErrCheckpointVersionMismatch = errors.New("checkpoint version mismatch")

	// ErrModelMismatch is returned on resume in strict mode when the engine's
	// configured model differs from the one recorded at suspension.
	ErrModelMismatch = errors.New("completion model changed since suspension")

	// ErrSinkClosed is returned by Emit after the sink has been completed,
	// errored, or abandoned by its receiver.
	ErrSinkClosed = errors.New("stream sink closed")
)

// StageError wraps a failure with the stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError creates a StageError.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
