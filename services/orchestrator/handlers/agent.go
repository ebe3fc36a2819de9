// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP surface of the agent service.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varunisrani/cogentxui/services/orchestrator/observability"
	"github.com/varunisrani/cogentxui/services/workflow"
)

// sinkBuffer is the ChannelSink capacity between the engine and the SSE
// relay. Emit blocks once the relay falls this far behind.
const sinkBuffer = 64

// keepAliveInterval paces SSE comments during long stage executions.
const keepAliveInterval = 15 * time.Second

// AgentRequest is the body for run and resume calls.
type AgentRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleAgentRun starts a new session and streams its first build cycle.
//
// # Description
//
// The response is an SSE stream of token/status events ending in a done
// event that carries the session id and its status. Errors the engine
// detects before producing any output (busy session, id collision) are
// returned as JSON with a matching HTTP status instead of a stream.
//
// # Example
//
//	POST /api/agent/run
//	{"session_id": "sess-1", "message": "build a newsletter crew"}
func HandleAgentRun(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		streamAgentCall(c, observability.EndpointRun, req.SessionID, func(ctx context.Context, sink workflow.StreamSink) *workflow.Outcome {
			return engine.Run(ctx, req.SessionID, req.Message, sink)
		})
	}
}

// HandleAgentResume continues a suspended session and streams the turn.
//
// # Example
//
//	POST /api/agent/resume
//	{"session_id": "sess-1", "message": "add a summarizer agent"}
func HandleAgentResume(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		if req.SessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}
		streamAgentCall(c, observability.EndpointResume, req.SessionID, func(ctx context.Context, sink workflow.StreamSink) *workflow.Outcome {
			return engine.Resume(ctx, req.SessionID, req.Message, sink)
		})
	}
}

// HandleAgentReset deletes a session's checkpoint.
//
// # Example
//
//	DELETE /api/agent/session/sess-1
func HandleAgentReset(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if err := engine.Reset(c.Request.Context(), sessionID); err != nil {
			status, kind := errorStatus(err)
			observability.DefaultMetrics.RecordError(observability.EndpointReset, kind)
			observability.DefaultMetrics.RecordRequest(observability.EndpointReset, false)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		observability.DefaultMetrics.RecordRequest(observability.EndpointReset, true)
		c.Status(http.StatusNoContent)
	}
}

// streamAgentCall drives one engine call and relays its sink over SSE.
//
// The first sink event decides the response shape: an error event before
// any output maps to a JSON error with a proper status code; anything else
// upgrades the response to an SSE stream.
func streamAgentCall(c *gin.Context, endpoint observability.Endpoint, sessionID string,
	call func(context.Context, workflow.StreamSink) *workflow.Outcome) {

	sink := workflow.NewChannelSink(sinkBuffer)
	outcomeCh := make(chan *workflow.Outcome, 1)

	// The engine owns the call lifetime; the request context only feeds
	// cancellation into the stages.
	ctx := c.Request.Context()
	go func() {
		outcomeCh <- call(ctx, sink)
	}()

	first, ok := <-sink.Events()
	if !ok {
		// Channel never closes in normal operation; treat as internal.
		outcome := <-outcomeCh
		observability.DefaultMetrics.RecordRequest(endpoint, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": outcomeError(outcome)})
		return
	}
	if first.Type == workflow.SinkEventError {
		outcome := <-outcomeCh
		status, kind := errorStatus(first.Err)
		observability.DefaultMetrics.RecordError(endpoint, kind)
		observability.DefaultMetrics.RecordRequest(endpoint, false)
		c.JSON(status, gin.H{"error": outcomeError(outcome)})
		return
	}

	SetSSEHeaders(c.Writer)
	writer, err := NewSSEWriter(c.Writer)
	if err != nil {
		sink.Cancel()
		<-outcomeCh
		observability.DefaultMetrics.RecordRequest(endpoint, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	start := time.Now()
	observability.DefaultMetrics.StreamStarted(endpoint)
	defer func() {
		observability.DefaultMetrics.StreamEnded(endpoint, time.Since(start).Seconds())
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	relayEvent(writer, first)

	for {
		select {
		case event := <-sink.Events():
			done := relayEvent(writer, event)
			if done {
				outcome := <-outcomeCh
				finishStream(writer, endpoint, sessionID, outcome)
				return
			}
		case <-keepAlive.C:
			if err := writer.WriteKeepAlive(); err != nil {
				slog.Warn("SSE keepalive failed, client likely gone", "error", err)
				sink.Cancel()
				<-outcomeCh
				observability.DefaultMetrics.RecordRequest(endpoint, false)
				return
			}
		case <-ctx.Done():
			slog.Info("client disconnected from agent stream",
				"session_id", sessionID)
			sink.Cancel()
			<-outcomeCh
			observability.DefaultMetrics.RecordRequest(endpoint, false)
			return
		}
	}
}

// relayEvent writes one sink event as SSE. Returns true when the stream's
// logical end was relayed.
func relayEvent(writer *SSEWriter, event workflow.SinkEvent) bool {
	switch event.Type {
	case workflow.SinkEventChunk:
		if err := writer.WriteToken(event.Chunk); err != nil {
			slog.Warn("SSE token write failed", "error", err)
		}
		return false
	case workflow.SinkEventStatus:
		if err := writer.WriteStatus(event.Chunk); err != nil {
			slog.Warn("SSE status write failed", "error", err)
		}
		return false
	case workflow.SinkEventError:
		if err := writer.WriteError(event.Err.Error()); err != nil {
			slog.Warn("SSE error write failed", "error", err)
		}
		return true
	case workflow.SinkEventComplete:
		return true
	default:
		return false
	}
}

// finishStream writes the done event and records the request metric.
func finishStream(writer *SSEWriter, endpoint observability.Endpoint, sessionID string, outcome *workflow.Outcome) {
	switch outcome.Kind {
	case workflow.OutcomeFailure:
		_, kind := errorStatus(outcome.Err)
		observability.DefaultMetrics.RecordError(endpoint, kind)
		observability.DefaultMetrics.RecordRequest(endpoint, false)
	default:
		if outcome.State != nil {
			sessionID = outcome.State.SessionID
		}
		if err := writer.WriteDone(sessionID, sessionStatus(outcome)); err != nil {
			slog.Warn("SSE done write failed", "error", err)
		}
		observability.DefaultMetrics.RecordRequest(endpoint, true)
	}
}

func sessionStatus(outcome *workflow.Outcome) string {
	if outcome.State == nil {
		return ""
	}
	return string(outcome.State.Status)
}

func outcomeError(outcome *workflow.Outcome) string {
	if outcome == nil || outcome.Err == nil {
		return "internal error"
	}
	return outcome.Err.Error()
}

// errorStatus maps engine errors to an HTTP status and a metrics kind.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, workflow.ErrInvalidSession):
		return http.StatusNotFound, "invalid_session"
	case errors.Is(err, workflow.ErrSessionBusy):
		return http.StatusConflict, "session_busy"
	case errors.Is(err, workflow.ErrModelMismatch):
		return http.StatusConflict, "model_mismatch"
	case errors.Is(err, workflow.ErrCheckpointCorrupt),
		errors.Is(err, workflow.ErrCheckpointVersionMismatch):
		return http.StatusUnprocessableEntity, "checkpoint_corrupt"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
