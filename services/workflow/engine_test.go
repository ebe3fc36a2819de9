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
	"strings"
	"testing"

	"github.com/varunisrani/cogentxui/services/llm"
	"github.com/varunisrani/cogentxui/services/templates"
)

// fakeLLM answers each stage from its system prompt.
type fakeLLM struct {
	routerReply string
	generateErr error
	streamErr   error
	model       string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, _ string, _ llm.GenerationParams) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	if strings.Contains(systemPrompt, "routing") {
		return f.routerReply, nil
	}
	switch {
	case strings.Contains(systemPrompt, "defining scope"):
		return "scope document", nil
	case strings.Contains(systemPrompt, "software architect"):
		return "architecture plan", nil
	case strings.Contains(systemPrompt, "Implementation Planning"):
		return "implementation plan", nil
	}
	return "generated text", nil
}

func (f *fakeLLM) GenerateStream(_ context.Context, _, _ string, _ llm.GenerationParams, onDelta func(string) error) (string, error) {
	if f.streamErr != nil {
		return "", f.streamErr
	}
	chunks := []string{"streamed ", "answer"}
	for _, chunk := range chunks {
		if err := onDelta(chunk); err != nil {
			return "", err
		}
	}
	return "streamed answer", nil
}

func (f *fakeLLM) ModelName() string {
	if f.model == "" {
		return "test-model"
	}
	return f.model
}

func newTestEngine(t *testing.T, client llm.CompletionClient) (*Engine, *MemoryCheckpointStore) {
	t.Helper()
	store := NewMemoryCheckpointStore()
	stages := NewStages(client, nil, nil, nil, nil)
	engine, err := NewEngine(stages, store, EngineConfig{ModelName: client.ModelName()}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, store
}

// reasonerLLM marks its output so tests can tell which client produced the
// scope.
type reasonerLLM struct {
	fakeLLM
}

func (r *reasonerLLM) Generate(ctx context.Context, systemPrompt, prompt string, params llm.GenerationParams) (string, error) {
	text, err := r.fakeLLM.Generate(ctx, systemPrompt, prompt, params)
	return "reasoner: " + text, err
}

// TestScopeUsesReasonerModel verifies WithReasoner routes only the scope
// stage through the second client.
func TestScopeUsesReasonerModel(t *testing.T) {
	store := NewMemoryCheckpointStore()
	stages := NewStages(&fakeLLM{}, nil, nil, nil, nil).WithReasoner(&reasonerLLM{})
	engine, err := NewEngine(stages, store, EngineConfig{ModelName: "test-model"}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	outcome := engine.Run(context.Background(), "sess-reasoner", "build an agent", NewCollectorSink())
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("outcome = %v (err=%v), want suspended", outcome.Kind, outcome.Err)
	}
	if outcome.State.Scope != "reasoner: scope document" {
		t.Errorf("scope = %q, want reasoner output", outcome.State.Scope)
	}
	if outcome.State.Architecture != "architecture plan" {
		t.Errorf("architecture = %q, should come from the default client", outcome.State.Architecture)
	}
}

// TestRunSuspendsNewSession verifies a first message drives all build
// stages and parks at the await-input node.
func TestRunSuspendsNewSession(t *testing.T) {
	engine, store := newTestEngine(t, &fakeLLM{})
	sink := NewCollectorSink()

	outcome := engine.Run(context.Background(), "sess-1", "build a newsletter agent", sink)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("outcome = %v (err=%v), want suspended", outcome.Kind, outcome.Err)
	}

	state := outcome.State
	if state.Scope != "scope document" || state.Architecture != "architecture plan" || state.ImplementationPlan != "implementation plan" {
		t.Errorf("build stages did not fill state: %+v", state)
	}
	if state.Status != StatusSuspended {
		t.Errorf("status = %q, want suspended", state.Status)
	}
	if len(state.MessageHistory) != 2 {
		t.Fatalf("history length = %d, want 2 (user + assistant)", len(state.MessageHistory))
	}
	if state.MessageHistory[0].Role != RoleUser || state.MessageHistory[1].Role != RoleAssistant {
		t.Errorf("history roles wrong: %+v", state.MessageHistory)
	}
	if state.MessageHistory[1].Content != "streamed answer" {
		t.Errorf("assistant record = %q", state.MessageHistory[1].Content)
	}

	if got := strings.Join(sink.Chunks(), ""); got != "streamed answer" {
		t.Errorf("streamed chunks = %q", got)
	}
	if sink.Emit("late") != ErrSinkClosed {
		t.Error("sink should be closed after suspension")
	}

	saved, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("checkpoint not persisted: %v", err)
	}
	if saved.SuspendedAtStage != StageAwaitInput {
		t.Errorf("suspended at %q, want %q", saved.SuspendedAtStage, StageAwaitInput)
	}
	if saved.ModelName != "test-model" {
		t.Errorf("checkpoint model = %q", saved.ModelName)
	}
}

// TestRunGeneratesSessionID verifies an empty id gets one assigned.
func TestRunGeneratesSessionID(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	outcome := engine.Run(context.Background(), "", "build something", nil)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("outcome = %v (err=%v)", outcome.Kind, outcome.Err)
	}
	if outcome.State.SessionID == "" {
		t.Error("expected a generated session id")
	}
}

// TestValidationFailuresSignalSink verifies the sink sees a terminal error
// even when the request is rejected before any stage runs.
func TestValidationFailuresSignalSink(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	sink := NewCollectorSink()
	if outcome := engine.Run(context.Background(), "sess-v1", "", sink); outcome.Kind != OutcomeFailure {
		t.Fatalf("expected failure, got %v", outcome.Kind)
	}
	if !errors.Is(sink.Err(), ErrInvalidSession) {
		t.Errorf("Run validation should signal the sink, got %v", sink.Err())
	}

	sink = NewCollectorSink()
	if outcome := engine.Resume(context.Background(), "", "next", sink); outcome.Kind != OutcomeFailure {
		t.Fatalf("expected failure, got %v", outcome.Kind)
	}
	if !errors.Is(sink.Err(), ErrInvalidSession) {
		t.Errorf("Resume validation should signal the sink, got %v", sink.Err())
	}

	sink = NewCollectorSink()
	var nilCtx context.Context
	if outcome := engine.Run(nilCtx, "sess-v2", "build", sink); outcome.Kind != OutcomeFailure {
		t.Fatalf("expected failure, got %v", outcome.Kind)
	}
	if !errors.Is(sink.Err(), ErrNilContext) {
		t.Errorf("nil context should signal the sink, got %v", sink.Err())
	}
}

// TestRunRejectsExistingSession verifies Run cannot overwrite a parked
// session.
func TestRunRejectsExistingSession(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	if outcome := engine.Run(context.Background(), "sess-dup", "first", nil); outcome.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", outcome.Err)
	}
	outcome := engine.Run(context.Background(), "sess-dup", "again", nil)
	if outcome.Kind != OutcomeFailure || !errors.Is(outcome.Err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got kind=%v err=%v", outcome.Kind, outcome.Err)
	}
}

// TestResumeContinueRoute verifies a continue decision regenerates code and
// supersedes the checkpoint.
func TestResumeContinueRoute(t *testing.T) {
	engine, store := newTestEngine(t, &fakeLLM{routerReply: "coder_agent"})

	if outcome := engine.Run(context.Background(), "sess-2", "build an agent", nil); outcome.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", outcome.Err)
	}

	sink := NewCollectorSink()
	outcome := engine.Resume(context.Background(), "sess-2", "add a summarizer agent", sink)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("outcome = %v (err=%v), want suspended", outcome.Kind, outcome.Err)
	}
	if len(outcome.State.MessageHistory) != 4 {
		t.Errorf("history length = %d, want 4", len(outcome.State.MessageHistory))
	}

	saved, err := store.Load(context.Background(), "sess-2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(saved.SavedState.MessageHistory) != 4 {
		t.Errorf("checkpoint not superseded, history length = %d", len(saved.SavedState.MessageHistory))
	}
}

// TestResumeFinishRoute verifies a finish decision finalizes the session
// and rejects further resumes.
func TestResumeFinishRoute(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{routerReply: "finish_conversation"})

	if outcome := engine.Run(context.Background(), "sess-3", "build an agent", nil); outcome.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", outcome.Err)
	}

	outcome := engine.Resume(context.Background(), "sess-3", "that's all, thanks", nil)
	if outcome.Kind != OutcomeValue {
		t.Fatalf("outcome = %v (err=%v), want value", outcome.Kind, outcome.Err)
	}
	if outcome.State.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", outcome.State.Status)
	}

	again := engine.Resume(context.Background(), "sess-3", "one more thing", nil)
	if again.Kind != OutcomeFailure || !errors.Is(again.Err, ErrInvalidSession) {
		t.Fatalf("resume after finalize: kind=%v err=%v, want ErrInvalidSession", again.Kind, again.Err)
	}
}

// TestResumeUnknownSession verifies an unknown id is caller-facing invalid,
// not a degraded run.
func TestResumeUnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	outcome := engine.Resume(context.Background(), "no-such-session", "hello", nil)
	if outcome.Kind != OutcomeFailure || !errors.Is(outcome.Err, ErrInvalidSession) {
		t.Fatalf("kind=%v err=%v, want ErrInvalidSession", outcome.Kind, outcome.Err)
	}
}

// TestSessionBusy verifies a second driver for the same id is rejected
// instead of interleaved.
func TestSessionBusy(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	if err := engine.acquire("sess-busy"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer engine.release("sess-busy")

	outcome := engine.Run(context.Background(), "sess-busy", "build", nil)
	if outcome.Kind != OutcomeFailure || !errors.Is(outcome.Err, ErrSessionBusy) {
		t.Fatalf("kind=%v err=%v, want ErrSessionBusy", outcome.Kind, outcome.Err)
	}

	resume := engine.Resume(context.Background(), "sess-busy", "more", nil)
	if !errors.Is(resume.Err, ErrSessionBusy) {
		t.Fatalf("resume err=%v, want ErrSessionBusy", resume.Err)
	}
}

// TestHistoryAppendOnly verifies earlier records survive later turns
// unchanged.
func TestHistoryAppendOnly(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{routerReply: "coder_agent"})

	first := engine.Run(context.Background(), "sess-4", "build an agent", nil)
	if first.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", first.Err)
	}
	before := make([]MessageRecord, len(first.State.MessageHistory))
	copy(before, first.State.MessageHistory)

	second := engine.Resume(context.Background(), "sess-4", "keep going", nil)
	if second.Kind != OutcomeSuspended {
		t.Fatalf("resume failed: %v", second.Err)
	}

	after := second.State.MessageHistory
	if len(after) <= len(before) {
		t.Fatalf("history did not grow: %d -> %d", len(before), len(after))
	}
	for i, record := range before {
		if after[i].Role != record.Role || after[i].Content != record.Content {
			t.Errorf("record %d changed: %+v -> %+v", i, record, after[i])
		}
	}
}

// TestProviderFailureDegrades verifies provider errors leave the session
// suspended and resumable instead of failing the call.
func TestProviderFailureDegrades(t *testing.T) {
	providerErr := errors.New("provider unavailable")
	engine, _ := newTestEngine(t, &fakeLLM{generateErr: providerErr, streamErr: providerErr})

	sink := NewCollectorSink()
	outcome := engine.Run(context.Background(), "sess-5", "build an agent", sink)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("kind=%v err=%v, want suspended despite provider failure", outcome.Kind, outcome.Err)
	}
	if !strings.Contains(outcome.State.Scope, "build an agent") {
		t.Errorf("fallback scope should carry the raw request, got %q", outcome.State.Scope)
	}
	chunks := strings.Join(sink.Chunks(), "")
	if !strings.Contains(chunks, "temporarily unavailable") {
		t.Errorf("fallback answer not streamed, chunks = %q", chunks)
	}

	resumed := engine.Resume(context.Background(), "sess-5", "try again", nil)
	if resumed.Kind != OutcomeSuspended {
		t.Errorf("degraded session must stay resumable, kind=%v err=%v", resumed.Kind, resumed.Err)
	}
}

// TestRoutingFailureContinues verifies routing ambiguity keeps building.
func TestRoutingFailureContinues(t *testing.T) {
	client := &fakeLLM{}
	engine, _ := newTestEngine(t, client)

	if outcome := engine.Run(context.Background(), "sess-6", "build an agent", nil); outcome.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", outcome.Err)
	}

	client.routerReply = "I think you want to keep going?"
	outcome := engine.Resume(context.Background(), "sess-6", "hmm", nil)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("ambiguous route must continue, kind=%v err=%v", outcome.Kind, outcome.Err)
	}
}

// TestResumeModelMismatch covers both the strict and default policies for a
// checkpoint written under another model.
func TestResumeModelMismatch(t *testing.T) {
	makeSuspended := func(t *testing.T, store *MemoryCheckpointStore, sessionID string) {
		t.Helper()
		state := NewConversationState(sessionID, "build")
		state.Status = StatusSuspended
		checkpoint, err := NewCheckpoint(state, StageAwaitInput, "old-model")
		if err != nil {
			t.Fatalf("NewCheckpoint: %v", err)
		}
		if err := store.Save(context.Background(), checkpoint); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	t.Run("strict rejects", func(t *testing.T) {
		store := NewMemoryCheckpointStore()
		stages := NewStages(&fakeLLM{routerReply: "coder_agent"}, nil, nil, nil, nil)
		engine, err := NewEngine(stages, store, EngineConfig{ModelName: "test-model", StrictModel: true}, nil)
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		makeSuspended(t, store, "sess-strict")

		outcome := engine.Resume(context.Background(), "sess-strict", "more", nil)
		if !errors.Is(outcome.Err, ErrModelMismatch) {
			t.Fatalf("err=%v, want ErrModelMismatch", outcome.Err)
		}
	})

	t.Run("default proceeds", func(t *testing.T) {
		store := NewMemoryCheckpointStore()
		stages := NewStages(&fakeLLM{routerReply: "coder_agent"}, nil, nil, nil, nil)
		engine, err := NewEngine(stages, store, EngineConfig{ModelName: "test-model"}, nil)
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		makeSuspended(t, store, "sess-lenient")

		outcome := engine.Resume(context.Background(), "sess-lenient", "more", nil)
		if outcome.Kind != OutcomeSuspended {
			t.Fatalf("kind=%v err=%v, want suspended", outcome.Kind, outcome.Err)
		}
	})
}

// TestReset verifies deletion frees the id and unknown ids are invalid.
func TestReset(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{})

	if outcome := engine.Run(context.Background(), "sess-7", "build", nil); outcome.Kind != OutcomeSuspended {
		t.Fatalf("setup run failed: %v", outcome.Err)
	}
	if err := engine.Reset(context.Background(), "sess-7"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if outcome := engine.Run(context.Background(), "sess-7", "fresh start", nil); outcome.Kind != OutcomeSuspended {
		t.Errorf("reset id should run fresh, kind=%v err=%v", outcome.Kind, outcome.Err)
	}

	if err := engine.Reset(context.Background(), "never-existed"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Reset unknown = %v, want ErrInvalidSession", err)
	}
}

// TestFinalizeDeterministic verifies finalizing the same state twice
// produces identical output and the same closing record.
func TestFinalizeDeterministic(t *testing.T) {
	stages := NewStages(&fakeLLM{}, nil, nil, nil, nil)

	base := NewConversationState("sess-fin", "that's all")
	base.AppendRecord(RoleUser, "build an agent")
	base.AppendRecord(RoleAssistant, "here is your agent")
	base.Status = StatusSuspended

	first, second := base.Clone(), base.Clone()
	sinkA, sinkB := NewCollectorSink(), NewCollectorSink()
	stages.Finalize(context.Background(), first, sinkA)
	stages.Finalize(context.Background(), second, sinkB)

	if got, want := strings.Join(sinkA.Chunks(), ""), strings.Join(sinkB.Chunks(), ""); got != want {
		t.Errorf("finalize output differs: %q vs %q", got, want)
	}
	if first.Status != StatusCompleted || second.Status != StatusCompleted {
		t.Error("finalize should mark both states completed")
	}
	lastA := first.MessageHistory[len(first.MessageHistory)-1]
	lastB := second.MessageHistory[len(second.MessageHistory)-1]
	if lastA.Role != lastB.Role || lastA.Content != lastB.Content {
		t.Errorf("closing records differ: %+v vs %+v", lastA, lastB)
	}
}

// TestClassifyIntent covers the router reply normalization.
func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		reply string
		want  RouteDecision
	}{
		{"finish_conversation", RouteFinish},
		{"  Finish_Conversation  ", RouteFinish},
		{`"finish_conversation"`, RouteFinish},
		{"coder_agent", RouteContinue},
		{"", RouteContinue},
		{"finish", RouteContinue},
		{"let's keep building", RouteContinue},
		// The token inside a larger sentence is ambiguous; only the exact
		// token routes to finish.
		{"The answer is finish_conversation.", RouteContinue},
		{"do not finish_conversation", RouteContinue},
		{"I can't tell if they want to finish_conversation", RouteContinue},
		{`{"route": "finish_conversation"}`, RouteFinish},
		{`{'decision': 'finish_conversation'}`, RouteFinish},
		{`{"route": "coder_agent"}`, RouteContinue},
		{`The router returned {"next": "finish_conversation"} this time.`, RouteFinish},
	}
	for _, tc := range cases {
		if got := classifyIntent(tc.reply); got != tc.want {
			t.Errorf("classifyIntent(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

// fakeFinder and fakeAdapter script the template reuse path.
type fakeFinder struct {
	match *templates.Match
	found bool
	err   error
}

func (f *fakeFinder) FindSimilar(context.Context, string) (*templates.Match, bool, error) {
	return f.match, f.found, f.err
}

type fakeAdapter struct {
	result map[string]string
	err    error
}

func (a *fakeAdapter) Adapt(context.Context, templates.Artifact, string, string) (map[string]string, error) {
	return a.result, a.err
}

func newTemplateEngine(t *testing.T, finder TemplateFinder, adapter TemplateAdapter) *Engine {
	t.Helper()
	client := &fakeLLM{}
	stages := NewStages(client, finder, adapter, nil, nil)
	engine, err := NewEngine(stages, NewMemoryCheckpointStore(), EngineConfig{ModelName: client.ModelName()}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

// TestRunTemplateReuse verifies a retrieved template short-circuits full
// generation and streams adaptation status.
func TestRunTemplateReuse(t *testing.T) {
	finder := &fakeFinder{
		match: &templates.Match{
			Artifact: templates.Artifact{
				Purpose:    "newsletter crew",
				Components: map[string]string{templates.ComponentCrew: "crew src"},
			},
			Score: 0.8,
		},
		found: true,
	}
	adapter := &fakeAdapter{result: map[string]string{
		templates.ComponentAgents: "adapted agents",
		templates.ComponentCrew:   "adapted crew",
	}}
	engine := newTemplateEngine(t, finder, adapter)

	sink := NewCollectorSink()
	outcome := engine.Run(context.Background(), "sess-tpl", "newsletter please", sink)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("kind=%v err=%v", outcome.Kind, outcome.Err)
	}

	statuses := strings.Join(sink.Statuses(), "")
	if !strings.Contains(statuses, "Found similar template: newsletter crew") {
		t.Errorf("missing template status message: %q", statuses)
	}
	if !strings.Contains(statuses, "Created agents.py") || !strings.Contains(statuses, "Created crew.py") {
		t.Errorf("missing created-file status messages: %q", statuses)
	}
	if chunks := strings.Join(sink.Chunks(), ""); strings.Contains(chunks, "Found similar template") {
		t.Errorf("status messages must not ride the content channel: %q", chunks)
	}

	answer := outcome.State.MessageHistory[len(outcome.State.MessageHistory)-1]
	if !strings.Contains(answer.Content, "adapted crew") {
		t.Errorf("assistant record should carry adapted code, got %q", answer.Content)
	}
	if strings.Contains(answer.Content, "streamed answer") {
		t.Error("full generation should not run when a template adapts")
	}
}

// TestRunTemplateAdaptationEmptyFallsBack verifies an all-empty adaptation
// falls through to full generation.
func TestRunTemplateAdaptationEmptyFallsBack(t *testing.T) {
	finder := &fakeFinder{
		match: &templates.Match{Artifact: templates.Artifact{
			Purpose:    "stale template",
			Components: map[string]string{templates.ComponentCrew: "crew src"},
		}},
		found: true,
	}
	engine := newTemplateEngine(t, finder, &fakeAdapter{result: map[string]string{}})

	sink := NewCollectorSink()
	outcome := engine.Run(context.Background(), "sess-tpl2", "build", sink)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("kind=%v err=%v", outcome.Kind, outcome.Err)
	}
	answer := outcome.State.MessageHistory[len(outcome.State.MessageHistory)-1]
	if answer.Content != "streamed answer" {
		t.Errorf("expected full generation answer, got %q", answer.Content)
	}
}

// TestRunTemplateRetrievalErrorFallsBack verifies a retrieval failure
// degrades to full generation instead of failing the turn.
func TestRunTemplateRetrievalErrorFallsBack(t *testing.T) {
	finder := &fakeFinder{err: fmt.Errorf("weaviate down")}
	engine := newTemplateEngine(t, finder, &fakeAdapter{})

	outcome := engine.Run(context.Background(), "sess-tpl3", "build", nil)
	if outcome.Kind != OutcomeSuspended {
		t.Fatalf("kind=%v err=%v", outcome.Kind, outcome.Err)
	}
	answer := outcome.State.MessageHistory[len(outcome.State.MessageHistory)-1]
	if answer.Content != "streamed answer" {
		t.Errorf("expected full generation answer, got %q", answer.Content)
	}
}
