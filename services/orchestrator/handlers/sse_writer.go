// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StreamEvent is one SSE event on an agent stream.
//
// # Fields
//
//   - Type: token, status, error or done.
//   - Content: The chunk text for token events.
//   - Message: Human-readable text for status events.
//   - Error: Failure description for error events.
//   - SessionId: Set on done events so clients know what to resume.
//   - SessionStatus: Set on done events: suspended or completed.
type StreamEvent struct {
	Id            string `json:"id"`
	Type          string `json:"type"`
	CreatedAt     int64  `json:"created_at"`
	Content       string `json:"content,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	SessionId     string `json:"session_id,omitempty"`
	SessionStatus string `json:"session_status,omitempty"`
}

// SSEWriter emits SSE-formatted events on an HTTP response.
//
// # Thread Safety
//
// Thread-safe via mutex. The relay goroutine and keep-alive ticker can
// write concurrently.
type SSEWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

// SetSSEHeaders configures response headers for Server-Sent Events.
// Must be called before writing any response body.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// NewSSEWriter creates a writer for the given ResponseWriter.
//
// # Outputs
//
//   - *SSEWriter: Ready to write events.
//   - error: Non-nil if the ResponseWriter does not support flushing.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("ResponseWriter does not support http.Flusher")
	}
	return &SSEWriter{writer: w, flusher: flusher}, nil
}

// WriteEvent serializes and writes one event, flushing immediately.
func (w *SSEWriter) WriteEvent(event StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event.Id = uuid.New().String()
	event.CreatedAt = time.Now().UnixMilli()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// SSE format: event: type\ndata: json\n\n
	if _, err := fmt.Fprintf(w.writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	w.flusher.Flush()
	return nil
}

// WriteToken streams one generated chunk.
func (w *SSEWriter) WriteToken(content string) error {
	return w.WriteEvent(StreamEvent{Type: "token", Content: content})
}

// WriteStatus streams a progress message.
func (w *SSEWriter) WriteStatus(message string) error {
	return w.WriteEvent(StreamEvent{Type: "status", Message: message})
}

// WriteError streams a failure description.
func (w *SSEWriter) WriteError(message string) error {
	return w.WriteEvent(StreamEvent{Type: "error", Error: message})
}

// WriteDone closes the logical stream, telling the client where the
// session ended up.
func (w *SSEWriter) WriteDone(sessionID, sessionStatus string) error {
	return w.WriteEvent(StreamEvent{
		Type:          "done",
		SessionId:     sessionID,
		SessionStatus: sessionStatus,
	})
}

// WriteKeepAlive sends an SSE comment to keep idle connections open.
// Comments are ignored by SSE clients but reset load balancer timeouts.
func (w *SSEWriter) WriteKeepAlive() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.writer, ": ping\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}

	w.flusher.Flush()
	return nil
}
