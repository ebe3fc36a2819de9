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

import "time"

// SessionStatus describes where a session is in its lifecycle.
type SessionStatus string

const (
	// StatusRunning means a call is actively executing stages.
	StatusRunning SessionStatus = "running"

	// StatusSuspended means the session is parked at the await-input node and
	// can be resumed with the user's next message.
	StatusSuspended SessionStatus = "suspended"

	// StatusCompleted means finalization ran; the session is terminal.
	StatusCompleted SessionStatus = "completed"
)

// MessageRecord is one serialized entry in a session's message history.
type MessageRecord struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationState is the shared state threaded through the stage graph.
//
// # Description
//
// One ConversationState exists per session and is owned exclusively by the
// in-flight run/resume call for that session id. MessageHistory is
// append-only: stages add records and never rewrite or drop existing ones.
// Scope, Architecture and ImplementationPlan are written once per build cycle
// and read by later stages without mutation.
//
// # Thread Safety
//
// Not safe for concurrent use. The engine's per-session busy guard ensures a
// single writer.
type ConversationState struct {
	SessionID          string          `json:"session_id"`
	LatestUserMessage  string          `json:"latest_user_message"`
	MessageHistory     []MessageRecord `json:"message_history"`
	Scope              string          `json:"scope"`
	Architecture       string          `json:"architecture"`
	ImplementationPlan string          `json:"implementation_plan"`
	Status             SessionStatus   `json:"status"`
}

// NewConversationState creates fresh state for a session's first message.
func NewConversationState(sessionID, message string) *ConversationState {
	return &ConversationState{
		SessionID:         sessionID,
		LatestUserMessage: message,
		MessageHistory:    []MessageRecord{},
		Status:            StatusRunning,
	}
}

// AppendRecord adds a record to the history. This is the only mutation the
// history supports.
func (s *ConversationState) AppendRecord(role, content string) {
	s.MessageHistory = append(s.MessageHistory, MessageRecord{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// Clone deep-copies the state so checkpoints stay isolated from later
// mutation.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	history := make([]MessageRecord, len(s.MessageHistory))
	copy(history, s.MessageHistory)
	cloned := *s
	cloned.MessageHistory = history
	return &cloned
}
