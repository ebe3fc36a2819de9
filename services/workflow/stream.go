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

import "sync"

// StreamSink receives ordered content increments for one session's call.
//
// # Description
//
// Stages call Emit and EmitStatus zero or more times, then exactly one of
// Complete or Error. Emit carries generated content; EmitStatus carries
// progress messages ("Created agents.py") that transports may render
// differently from content. Both share one FIFO per call; implementations
// must not buffer across stages or reorder. Emitting after the sink closes
// returns ErrSinkClosed, which stages treat as "receiver gone": they stop
// emitting but finish their work.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; the engine may emit from
// the goroutine draining a provider stream.
type StreamSink interface {
	Emit(chunk string) error
	EmitStatus(message string) error
	Complete()
	Error(reason error)
}

// NopSink discards everything. Used when the caller did not subscribe.
type NopSink struct{}

func (NopSink) Emit(string) error       { return nil }
func (NopSink) EmitStatus(string) error { return nil }
func (NopSink) Complete()               {}
func (NopSink) Error(error)             {}

// CollectorSink accumulates chunks in order. Used by tests and by callers
// that want the full text after the call returns.
type CollectorSink struct {
	mu       sync.Mutex
	chunks   []string
	statuses []string
	closed   bool
	err      error
}

// NewCollectorSink creates an empty collector.
func NewCollectorSink() *CollectorSink {
	return &CollectorSink{}
}

// Emit implements StreamSink.
func (s *CollectorSink) Emit(chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.chunks = append(s.chunks, chunk)
	return nil
}

// EmitStatus implements StreamSink.
func (s *CollectorSink) EmitStatus(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.statuses = append(s.statuses, message)
	return nil
}

// Complete implements StreamSink.
func (s *CollectorSink) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Error implements StreamSink.
func (s *CollectorSink) Error(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.err = reason
}

// Chunks returns a copy of everything emitted so far, in order.
func (s *CollectorSink) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Statuses returns a copy of every status message emitted so far, in order.
func (s *CollectorSink) Statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// Err returns the reason passed to Error, if any.
func (s *CollectorSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SinkEventType tags events delivered by a ChannelSink.
type SinkEventType string

const (
	SinkEventChunk    SinkEventType = "chunk"
	SinkEventStatus   SinkEventType = "status"
	SinkEventComplete SinkEventType = "complete"
	SinkEventError    SinkEventType = "error"
)

// SinkEvent is one item on a ChannelSink's event channel.
type SinkEvent struct {
	Type  SinkEventType
	Chunk string
	Err   error
}

// ChannelSink bridges the engine to a transport goroutine over a channel.
//
// # Description
//
// The transport reads Events until it sees a complete or error event, or
// abandons the stream by calling Cancel (e.g. the client disconnected).
// After Cancel, Emit returns ErrSinkClosed so stages stop producing output
// for this caller; per the engine's cancellation policy the stage itself
// runs to completion.
type ChannelSink struct {
	events chan SinkEvent
	done   chan struct{}
	once   sync.Once
}

// NewChannelSink creates a sink whose event channel holds up to buffer
// pending events before Emit blocks.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan SinkEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Events is the receive side for the transport.
func (s *ChannelSink) Events() <-chan SinkEvent {
	return s.events
}

// Cancel abandons the stream from the receiver side.
func (s *ChannelSink) Cancel() {
	s.once.Do(func() { close(s.done) })
}

// Emit implements StreamSink. Blocks when the receiver falls behind, which
// preserves FIFO ordering without unbounded buffering.
func (s *ChannelSink) Emit(chunk string) error {
	return s.send(SinkEvent{Type: SinkEventChunk, Chunk: chunk})
}

// EmitStatus implements StreamSink. Status messages share the chunk FIFO so
// the transport sees them in generation order.
func (s *ChannelSink) EmitStatus(message string) error {
	return s.send(SinkEvent{Type: SinkEventStatus, Chunk: message})
}

func (s *ChannelSink) send(event SinkEvent) error {
	select {
	case <-s.done:
		return ErrSinkClosed
	default:
	}
	select {
	case s.events <- event:
		return nil
	case <-s.done:
		return ErrSinkClosed
	}
}

// Complete implements StreamSink.
func (s *ChannelSink) Complete() {
	select {
	case s.events <- SinkEvent{Type: SinkEventComplete}:
	case <-s.done:
	}
	s.Cancel()
}

// Error implements StreamSink.
func (s *ChannelSink) Error(reason error) {
	select {
	case s.events <- SinkEvent{Type: SinkEventError, Err: reason}:
	case <-s.done:
	}
	s.Cancel()
}

var (
	_ StreamSink = (*CollectorSink)(nil)
	_ StreamSink = (*ChannelSink)(nil)
	_ StreamSink = NopSink{}
)
