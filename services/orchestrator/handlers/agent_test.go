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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/varunisrani/cogentxui/services/llm"
	"github.com/varunisrani/cogentxui/services/workflow"
)

// stubLLM returns fixed text for every stage.
type stubLLM struct {
	routerReply string
}

func (s *stubLLM) Generate(_ context.Context, systemPrompt, _ string, _ llm.GenerationParams) (string, error) {
	if strings.Contains(systemPrompt, "routing") {
		return s.routerReply, nil
	}
	return "stage output", nil
}

func (s *stubLLM) GenerateStream(_ context.Context, _, _ string, _ llm.GenerationParams, onDelta func(string) error) (string, error) {
	for _, chunk := range []string{"hello ", "world"} {
		if err := onDelta(chunk); err != nil {
			return "", err
		}
	}
	return "hello world", nil
}

func (s *stubLLM) ModelName() string { return "stub-model" }

func newTestRouter(t *testing.T, client llm.CompletionClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stages := workflow.NewStages(client, nil, nil, nil, nil)
	engine, err := workflow.NewEngine(stages, workflow.NewMemoryCheckpointStore(),
		workflow.EngineConfig{ModelName: client.ModelName()}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	router := gin.New()
	router.GET("/health", HealthCheck)
	api := router.Group("/api/agent")
	{
		api.POST("/run", HandleAgentRun(engine))
		api.POST("/resume", HandleAgentResume(engine))
		api.DELETE("/session/:sessionId", HandleAgentReset(engine))
	}
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// TestHealthCheck verifies liveness reporting.
func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// TestRunStreamsSSE verifies a run call produces token events and a done
// event carrying the suspended session.
func TestRunStreamsSSE(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	w := postJSON(router, "/api/agent/run", `{"session_id":"sess-h1","message":"build an agent"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: token") {
		t.Errorf("no token events in stream:\n%s", body)
	}
	if !strings.Contains(body, `"content":"hello "`) || !strings.Contains(body, `"content":"world"`) {
		t.Errorf("streamed chunks missing:\n%s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("no done event:\n%s", body)
	}
	if !strings.Contains(body, `"session_id":"sess-h1"`) || !strings.Contains(body, `"session_status":"suspended"`) {
		t.Errorf("done event payload wrong:\n%s", body)
	}
}

// TestRelayStatusEvent verifies a status sink event reaches the wire as its
// own SSE event type, not as a token.
func TestRelayStatusEvent(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	if err != nil {
		t.Fatalf("NewSSEWriter: %v", err)
	}

	if done := relayEvent(writer, workflow.SinkEvent{Type: workflow.SinkEventStatus, Chunk: "Adapting template"}); done {
		t.Error("status event must not end the stream")
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: status") {
		t.Errorf("no status event on the wire:\n%s", body)
	}
	if !strings.Contains(body, `"message":"Adapting template"`) {
		t.Errorf("status payload missing:\n%s", body)
	}
	if strings.Contains(body, "event: token") {
		t.Errorf("status relayed as token:\n%s", body)
	}
}

// TestRunMissingMessage verifies body validation.
func TestRunMissingMessage(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	w := postJSON(router, "/api/agent/run", `{"session_id":"sess-h2"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// TestResumeLifecycle verifies resume continues a run-created session and a
// finish message completes it.
func TestResumeLifecycle(t *testing.T) {
	client := &stubLLM{routerReply: "coder_agent"}
	router := newTestRouter(t, client)

	if w := postJSON(router, "/api/agent/run", `{"session_id":"sess-h3","message":"build"}`); w.Code != http.StatusOK {
		t.Fatalf("run status = %d", w.Code)
	}

	w := postJSON(router, "/api/agent/resume", `{"session_id":"sess-h3","message":"keep going"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("resume status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"session_status":"suspended"`) {
		t.Errorf("continue turn should suspend:\n%s", w.Body.String())
	}

	client.routerReply = "finish_conversation"
	w = postJSON(router, "/api/agent/resume", `{"session_id":"sess-h3","message":"we are done"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("finish status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"session_status":"completed"`) {
		t.Errorf("finish turn should complete:\n%s", w.Body.String())
	}
}

// TestResumeUnknownSessionIsJSON404 verifies pre-stream errors come back as
// JSON with a matching status, not as a stream.
func TestResumeUnknownSessionIsJSON404(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	w := postJSON(router, "/api/agent/resume", `{"session_id":"nope","message":"hi"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}
}

// TestResumeRequiresSessionID verifies resume rejects a missing id before
// touching the engine.
func TestResumeRequiresSessionID(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	w := postJSON(router, "/api/agent/resume", `{"message":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// TestResetSession verifies deletion and the unknown-id error shape.
func TestResetSession(t *testing.T) {
	router := newTestRouter(t, &stubLLM{})

	if w := postJSON(router, "/api/agent/run", `{"session_id":"sess-h4","message":"build"}`); w.Code != http.StatusOK {
		t.Fatalf("run status = %d", w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/agent/session/sess-h4", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/agent/session/sess-h4", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}
