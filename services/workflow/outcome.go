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

// OutcomeKind tags the result of driving a session through the graph.
type OutcomeKind string

const (
	// OutcomeValue carries the final state of a completed session.
	OutcomeValue OutcomeKind = "value"

	// OutcomeSuspended carries the checkpoint persisted at the await-input
	// node. Suspension is a normal return value, never a panic or sentinel
	// error.
	OutcomeSuspended OutcomeKind = "suspended"

	// OutcomeFailure carries an error that made the call unusable.
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the tagged result of Run or Resume.
type Outcome struct {
	Kind       OutcomeKind
	State      *ConversationState
	Checkpoint *Checkpoint
	Err        error
}

// ValueOutcome wraps a terminal state.
func ValueOutcome(state *ConversationState) *Outcome {
	return &Outcome{Kind: OutcomeValue, State: state}
}

// SuspendOutcome wraps the checkpoint saved at suspension.
func SuspendOutcome(checkpoint *Checkpoint) *Outcome {
	return &Outcome{
		Kind:       OutcomeSuspended,
		State:      checkpoint.SavedState,
		Checkpoint: checkpoint,
	}
}

// FailureOutcome wraps an error.
func FailureOutcome(err error) *Outcome {
	return &Outcome{Kind: OutcomeFailure, Err: err}
}
