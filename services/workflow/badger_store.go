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
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

const checkpointKeyPrefix = "checkpoint/"

// BadgerCheckpointStore persists checkpoints in a local Badger database so
// suspended sessions survive process restarts.
//
// # Thread Safety
//
// Safe for concurrent use; Badger serializes writes internally and the
// engine guarantees a single writer per session id.
type BadgerCheckpointStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerCheckpointStore opens (or creates) the database at dir.
func NewBadgerCheckpointStore(dir string, logger *slog.Logger) (*BadgerCheckpointStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}
	logger.Info("checkpoint store opened", slog.String("dir", dir))
	return &BadgerCheckpointStore{db: db, logger: logger}, nil
}

// Save implements CheckpointStore.
func (s *BadgerCheckpointStore) Save(ctx context.Context, checkpoint *Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := checkpoint.Marshal()
	if err != nil {
		return err
	}
	key := []byte(checkpointKeyPrefix + checkpoint.SessionID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	s.logger.Debug("checkpoint saved",
		slog.String("session_id", checkpoint.SessionID),
		slog.String("stage", checkpoint.SuspendedAtStage),
	)
	return nil
}

// Load implements CheckpointStore.
func (s *BadgerCheckpointStore) Load(ctx context.Context, sessionID string) (*Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(checkpointKeyPrefix + sessionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return UnmarshalCheckpoint(data)
}

// Delete implements CheckpointStore.
func (s *BadgerCheckpointStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(checkpointKeyPrefix + sessionID))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *BadgerCheckpointStore) Close() error {
	return s.db.Close()
}

var _ CheckpointStore = (*BadgerCheckpointStore)(nil)
