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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// CheckpointVersion is the current checkpoint format version (semver).
const CheckpointVersion = "1.0.0"

// Checkpoint is a persisted snapshot of a session at its suspension point.
//
// # Description
//
// A checkpoint captures everything needed to resume: the conversation state,
// the stage the session is parked at, and the completion model that was
// active when it suspended. A new checkpoint for the same session id
// supersedes the previous one; stores keep no version history.
type Checkpoint struct {
	SessionID        string             `json:"session_id"`
	SavedState       *ConversationState `json:"saved_state"`
	SuspendedAtStage string             `json:"suspended_at_stage"`
	ModelName        string             `json:"model_name"`
	Timestamp        time.Time          `json:"timestamp"`
	Version          string             `json:"version"`
	Checksum         string             `json:"checksum"`
}

// NewCheckpoint snapshots state for suspension at the given stage.
//
// The state is deep-copied so the caller's copy can keep mutating, and the
// checksum is computed over the serialized snapshot.
func NewCheckpoint(state *ConversationState, stage, modelName string) (*Checkpoint, error) {
	if state == nil {
		return nil, fmt.Errorf("state must not be nil")
	}
	c := &Checkpoint{
		SessionID:        state.SessionID,
		SavedState:       state.Clone(),
		SuspendedAtStage: stage,
		ModelName:        modelName,
		Timestamp:        time.Now().UTC(),
		Version:          CheckpointVersion,
	}
	checksum, err := c.computeChecksum()
	if err != nil {
		return nil, fmt.Errorf("compute checksum: %w", err)
	}
	c.Checksum = checksum
	return c, nil
}

// computeChecksum calculates SHA256 of the checkpoint for integrity
// verification, excluding the checksum field itself.
func (c *Checkpoint) computeChecksum() (string, error) {
	data := struct {
		SessionID        string             `json:"session_id"`
		SavedState       *ConversationState `json:"saved_state"`
		SuspendedAtStage string             `json:"suspended_at_stage"`
		ModelName        string             `json:"model_name"`
		Timestamp        time.Time          `json:"timestamp"`
		Version          string             `json:"version"`
	}{
		SessionID:        c.SessionID,
		SavedState:       c.SavedState,
		SuspendedAtStage: c.SuspendedAtStage,
		ModelName:        c.ModelName,
		Timestamp:        c.Timestamp,
		Version:          c.Version,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}

	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

// Verify checks the checkpoint's integrity.
//
// # Outputs
//
//   - bool: True if the stored checksum matches the recomputed value.
func (c *Checkpoint) Verify() bool {
	if c == nil || c.SavedState == nil {
		return false
	}
	expected, err := c.computeChecksum()
	if err != nil {
		return false
	}
	return c.Checksum == expected
}

// Marshal serializes the checkpoint for storage.
func (c *Checkpoint) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return data, nil
}

// UnmarshalCheckpoint parses a stored checkpoint and validates its format
// version and checksum.
func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if c.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrCheckpointVersionMismatch, c.Version, CheckpointVersion)
	}
	if !c.Verify() {
		return nil, ErrCheckpointCorrupt
	}
	return &c, nil
}
