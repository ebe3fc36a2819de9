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
	"context"
	"sync"
)

// CheckpointStore persists one checkpoint per session id.
//
// # Description
//
// Save is last-writer-wins per key. The engine permits only one in-flight
// call per session id, so implementations need no cross-session coordination
// beyond their own internal consistency.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use across sessions.
type CheckpointStore interface {
	// Save persists the checkpoint, replacing any previous one for the same
	// session id.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves the checkpoint for the session id. Returns
	// ErrCheckpointNotFound when none exists.
	Load(ctx context.Context, sessionID string) (*Checkpoint, error)

	// Delete removes the checkpoint for the session id. Deleting a missing
	// checkpoint is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryCheckpointStore keeps checkpoints in process memory. Used in tests
// and single-process deployments that don't need durability.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{checkpoints: make(map[string][]byte)}
}

// Save implements CheckpointStore. The checkpoint is stored in serialized
// form so later mutation of the caller's copy cannot leak in.
func (s *MemoryCheckpointStore) Save(_ context.Context, checkpoint *Checkpoint) error {
	data, err := checkpoint.Marshal()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[checkpoint.SessionID] = data
	return nil
}

// Load implements CheckpointStore.
func (s *MemoryCheckpointStore) Load(_ context.Context, sessionID string) (*Checkpoint, error) {
	s.mu.RLock()
	data, ok := s.checkpoints[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	return UnmarshalCheckpoint(data)
}

// Delete implements CheckpointStore.
func (s *MemoryCheckpointStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, sessionID)
	return nil
}

var _ CheckpointStore = (*MemoryCheckpointStore)(nil)
