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
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/varunisrani/cogentxui/pkg/jsonutil"
	"github.com/varunisrani/cogentxui/services/llm"
	"github.com/varunisrani/cogentxui/services/templates"
)

// Stage names, also used as checkpoint suspension markers.
const (
	StageScope              = "SCOPE"
	StageArchitecture       = "ARCHITECTURE"
	StageImplementationPlan = "IMPLEMENTATION_PLAN"
	StageCodeGeneration     = "CODE_GENERATION"
	StageAwaitInput         = "AWAIT_INPUT"
	StageRouting            = "ROUTING"
	StageFinalize           = "FINALIZE"
)

// Message roles in the history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RouteDecision is the routing stage's verdict on the user's message.
type RouteDecision string

const (
	// RouteContinue sends the session back through code generation.
	RouteContinue RouteDecision = "continue"

	// RouteFinish sends the session to finalization.
	RouteFinish RouteDecision = "finish"
)

// finishToken is the exact reply the router model is asked to produce when
// the user wants to wrap up.
const finishToken = "finish_conversation"

// TemplateFinder retrieves the best prior artifact for a request.
type TemplateFinder interface {
	FindSimilar(ctx context.Context, query string) (*templates.Match, bool, error)
}

// TemplateAdapter rewrites an artifact's components for new requirements.
type TemplateAdapter interface {
	Adapt(ctx context.Context, artifact templates.Artifact, requirements, architecture string) (map[string]string, error)
}

// DocLister names the reference documentation available to the scope stage.
type DocLister interface {
	ListPages(ctx context.Context) ([]string, error)
}

const scopeSystemPrompt = `You are an expert at defining scope and requirements for multi-agent AI systems.

Your core responsibilities:

1. Requirements Analysis:
   - Understand the user's needs for AI agent creation
   - Break down requirements into distinct agent roles (2-4 agents)
   - Identify key functionalities for each agent
   - Map required tools and integrations per agent

2. Scope Definition:
   - Create a detailed project scope
   - Define each agent's responsibilities
   - Outline inter-agent workflows
   - Specify success criteria per agent

Always create comprehensive scope documents that include:
1. Multi-agent architecture diagram
2. Agent roles and responsibilities
3. Inter-agent communication patterns
4. Tool distribution across agents
5. Relevant documentation references`

const architectureSystemPrompt = "You are an expert software architect who designs robust and scalable systems. " +
	"You analyze requirements and create detailed technical architectures."

const implementationSystemPrompt = "Implementation Planning Agent creates detailed technical specifications."

const coderSystemPrompt = `You are a specialized AI agent engineer focused on building robust multi-agent systems.
You implement according to the provided scope and architecture, producing complete,
production-ready code for agents, tasks, tools, and their top-level wiring.`

const routerSystemPrompt = `You are an expert at understanding and routing user requests in an agent development workflow, even when messages contain typos or are unclear.
Always focus on understanding the core intent, and answer with exactly the routing token you are asked for.`

const finalizeSystemPrompt = `You are an expert at providing final instructions for AI agent setup and usage.

For each conversation end:
1. Summarize what was created
2. List setup steps in order
3. Show example usage
4. Provide a friendly goodbye

Always ensure users have everything they need to run their solution.`

// Stages holds the collaborators the stage graph calls into.
//
// # Description
//
// Each exported method is one node of the session graph. Stages never
// terminate a session on provider failure: generation stages degrade to a
// fallback message recorded in state, and routing degrades to RouteContinue.
// Only infrastructure that makes the session unusable (nil state, canceled
// context) surfaces as an error.
//
// # Thread Safety
//
// Safe for concurrent use across sessions. A single session's state must
// only be driven by one call at a time; the engine's busy guard enforces
// that.
type Stages struct {
	completions llm.CompletionClient
	reasoner    llm.CompletionClient
	finder      TemplateFinder
	adapter     TemplateAdapter
	docs        DocLister
	logger      *slog.Logger
}

// NewStages wires the stage collaborators. finder, adapter and docs may be
// nil; the affected stages then skip straight to their fallback paths.
func NewStages(completions llm.CompletionClient, finder TemplateFinder, adapter TemplateAdapter, docs DocLister, logger *slog.Logger) *Stages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stages{
		completions: completions,
		finder:      finder,
		adapter:     adapter,
		docs:        docs,
		logger:      logger,
	}
}

// WithReasoner routes the scope stage through a separate, typically
// stronger, model. Without one the scope stage uses the default client.
func (s *Stages) WithReasoner(client llm.CompletionClient) *Stages {
	s.reasoner = client
	return s
}

func (s *Stages) scopeClient() llm.CompletionClient {
	if s.reasoner != nil {
		return s.reasoner
	}
	return s.completions
}

// DefineScope produces the scope document for the user's request.
//
// The reasoner sees the list of ingested documentation pages so it can name
// the relevant ones in the scope. A documentation listing failure degrades
// to an empty list, and a provider failure degrades to a fallback scope
// built from the raw request.
func (s *Stages) DefineScope(ctx context.Context, state *ConversationState) {
	ctx, span := tracer.Start(ctx, StageScope)
	defer span.End()

	var pages []string
	if s.docs != nil {
		var err error
		pages, err = s.docs.ListPages(ctx)
		if err != nil {
			s.logger.Warn("documentation listing failed, scoping without it",
				slog.String("session_id", state.SessionID),
				slog.String("error", err.Error()),
			)
			pages = nil
		}
	}

	prompt := fmt.Sprintf(`User AI Agent Request: %s

Create a detailed scope document for the AI agent including:
- Architecture diagram
- Core components
- External dependencies
- Testing strategy

Also based on these documentation pages available:

%s

Include a list of documentation pages that are relevant to creating this agent for the user in the scope document.`,
		state.LatestUserMessage, strings.Join(pages, "\n"))

	scope, err := s.scopeClient().Generate(ctx, scopeSystemPrompt, prompt, llm.GenerationParams{})
	if err != nil {
		stageErr := NewStageError(StageScope, err)
		span.RecordError(stageErr)
		s.logger.Error("scope generation failed, using fallback scope",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		scope = fmt.Sprintf("Scope generation was unavailable. Proceeding with the raw request as scope:\n\n%s",
			state.LatestUserMessage)
	}

	state.Scope = scope
	s.logger.Info("scope defined",
		slog.String("session_id", state.SessionID),
		slog.Int("scope_len", len(scope)),
	)
}

// CreateArchitecture derives the technical architecture from the scope.
func (s *Stages) CreateArchitecture(ctx context.Context, state *ConversationState) {
	ctx, span := tracer.Start(ctx, StageArchitecture)
	defer span.End()

	prompt := fmt.Sprintf(`Based on the following scope document:
%s

Create a detailed technical architecture including:
1. System components and their interactions
2. Data flow between components
3. API specifications and endpoints
4. Technology stack recommendations
5. Integration points with external systems
6. Security considerations
7. Scalability and performance design
8. Deployment architecture`, state.Scope)

	architecture, err := s.completions.Generate(ctx, architectureSystemPrompt, prompt, llm.GenerationParams{})
	if err != nil {
		stageErr := NewStageError(StageArchitecture, err)
		span.RecordError(stageErr)
		s.logger.Error("architecture generation failed, using fallback",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		architecture = "Architecture generation was unavailable. Implement directly from the scope document."
	}

	state.Architecture = architecture
	s.logger.Info("architecture created",
		slog.String("session_id", state.SessionID),
		slog.Int("architecture_len", len(architecture)),
	)
}

// CreateImplementationPlan derives the step-by-step plan from the
// architecture.
func (s *Stages) CreateImplementationPlan(ctx context.Context, state *ConversationState) {
	ctx, span := tracer.Start(ctx, StageImplementationPlan)
	defer span.End()

	prompt := fmt.Sprintf(`Based on the following architecture document:
%s

Create a detailed implementation plan including:
1. Step-by-step implementation guide
2. Required tools and libraries
3. Code structure and organization
4. Testing and validation strategies
5. Deployment instructions`, state.Architecture)

	plan, err := s.completions.Generate(ctx, implementationSystemPrompt, prompt, llm.GenerationParams{})
	if err != nil {
		stageErr := NewStageError(StageImplementationPlan, err)
		span.RecordError(stageErr)
		s.logger.Error("implementation plan generation failed, using fallback",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		plan = "Implementation planning was unavailable. Follow the architecture document directly."
	}

	state.ImplementationPlan = plan
	s.logger.Info("implementation plan created",
		slog.String("session_id", state.SessionID),
		slog.Int("plan_len", len(plan)),
	)
}

// GenerateCode produces the code artifact for the user's latest message.
//
// # Description
//
// Template reuse is tried first: if the retriever finds a prior artifact
// with code and adaptation yields at least one component, the adapted
// bundle is the turn's answer. Any failure along the template path falls
// through to full streaming generation; a provider failure there degrades
// to a fallback message so the session stays resumable.
//
// The assistant's answer is both streamed to the sink and appended to the
// history.
func (s *Stages) GenerateCode(ctx context.Context, state *ConversationState, sink StreamSink) {
	ctx, span := tracer.Start(ctx, StageCodeGeneration)
	defer span.End()

	if answer, ok := s.generateFromTemplate(ctx, state, sink); ok {
		span.SetAttributes(attribute.Bool("codegen.template_reuse", true))
		state.AppendRecord(RoleAssistant, answer)
		return
	}

	prompt := fmt.Sprintf(`%s

Scope document:
%s

Architecture plan:
%s

Implementation plan:
%s`, state.LatestUserMessage, state.Scope, state.Architecture, state.ImplementationPlan)

	answer, err := s.completions.GenerateStream(ctx, coderSystemPrompt, prompt, llm.GenerationParams{}, sink.Emit)
	if err != nil {
		stageErr := NewStageError(StageCodeGeneration, err)
		span.RecordError(stageErr)
		s.logger.Error("code generation failed, recording fallback answer",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		answer = "Code generation is temporarily unavailable. Your session is saved; send another message to retry."
		if emitErr := sink.Emit(answer); emitErr != nil {
			s.logger.Warn("sink rejected fallback chunk",
				slog.String("session_id", state.SessionID),
				slog.String("error", emitErr.Error()),
			)
		}
	}

	state.AppendRecord(RoleAssistant, answer)
	s.logger.Info("code generation finished",
		slog.String("session_id", state.SessionID),
		slog.Int("answer_len", len(answer)),
	)
}

// generateFromTemplate runs the retrieval and adaptation path. The second
// return value reports whether the path produced the turn's answer.
func (s *Stages) generateFromTemplate(ctx context.Context, state *ConversationState, sink StreamSink) (string, bool) {
	if s.finder == nil || s.adapter == nil {
		return "", false
	}

	match, found, err := s.finder.FindSimilar(ctx, state.LatestUserMessage)
	if err != nil {
		s.logger.Warn("template retrieval failed, falling back to full generation",
			slog.String("session_id", state.SessionID),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	if !found || !match.Artifact.HasCode() {
		s.logger.Info("no usable template, proceeding with full generation",
			slog.String("session_id", state.SessionID),
		)
		return "", false
	}

	if err := sink.EmitStatus(fmt.Sprintf("\nFound similar template: %s\nAdapting template to your requirements...\n",
		match.Artifact.Purpose)); err != nil {
		s.logger.Warn("sink rejected status chunk",
			slog.String("session_id", state.SessionID),
			slog.String("error", err.Error()),
		)
	}

	adapted, err := s.adapter.Adapt(ctx, match.Artifact, state.LatestUserMessage, state.Architecture)
	if err != nil {
		s.logger.Warn("template adaptation failed, falling back to full generation",
			slog.String("session_id", state.SessionID),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	if len(adapted) == 0 {
		s.logger.Warn("template adaptation produced no components, falling back",
			slog.String("session_id", state.SessionID),
		)
		return "", false
	}

	var b strings.Builder
	for _, name := range templates.ComponentNames {
		code, ok := adapted[name]
		if !ok {
			continue
		}
		fileName := name + ".py"
		if err := sink.EmitStatus(fmt.Sprintf("\nCreated %s", fileName)); err != nil {
			s.logger.Warn("sink rejected status chunk",
				slog.String("session_id", state.SessionID),
				slog.String("error", err.Error()),
			)
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", fileName, code)
	}
	if err := sink.EmitStatus("\nTemplate successfully adapted and files created!"); err != nil {
		s.logger.Warn("sink rejected status chunk",
			slog.String("session_id", state.SessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("template adapted for request",
		slog.String("session_id", state.SessionID),
		slog.String("purpose", match.Artifact.Purpose),
		slog.Int("components", len(adapted)),
	)
	return b.String(), true
}

// RouteMessage classifies the user's resumed message.
//
// An unrecognized or failed classification routes to RouteContinue: when in
// doubt the session keeps building rather than ending on the user.
func (s *Stages) RouteMessage(ctx context.Context, state *ConversationState) RouteDecision {
	ctx, span := tracer.Start(ctx, StageRouting)
	defer span.End()

	prompt := fmt.Sprintf(`The user has sent a message:

%s

If the user wants to end the conversation, respond with just the text "%s".
If the user wants to continue coding the AI agent, respond with just the text "coder_agent".`,
		state.LatestUserMessage, finishToken)

	reply, err := s.completions.Generate(ctx, routerSystemPrompt, prompt, llm.GenerationParams{})
	if err != nil {
		stageErr := NewStageError(StageRouting, err)
		span.RecordError(stageErr)
		s.logger.Warn("routing classification failed, continuing session",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		return RouteContinue
	}

	decision := classifyIntent(reply)
	span.SetAttributes(attribute.String("route.decision", string(decision)))
	s.logger.Info("routed user message",
		slog.String("session_id", state.SessionID),
		slog.String("decision", string(decision)),
	)
	return decision
}

// classifyIntent maps the router model's reply onto a decision. Anything
// that is not an unambiguous finish is a continue.
//
// Some models wrap the token in a JSON envelope despite the prompt, so the
// reply goes through the recovery parser first; a route-like field wins over
// the raw text scan.
func classifyIntent(reply string) RouteDecision {
	text := reply
	if obj := jsonutil.ParseObject(reply); obj != nil {
		for _, key := range []string{"route", "decision", "next", "action"} {
			if value, ok := obj[key].(string); ok {
				text = value
				break
			}
		}
	}
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.Trim(normalized, `"'.`)
	if normalized == finishToken {
		return RouteFinish
	}
	return RouteContinue
}

// Finalize streams the closing instructions and marks the session
// completed.
//
// Finalization always completes: a provider failure degrades to a fallback
// farewell, never to a failed session.
func (s *Stages) Finalize(ctx context.Context, state *ConversationState, sink StreamSink) {
	ctx, span := tracer.Start(ctx, StageFinalize)
	defer span.End()

	prompt := fmt.Sprintf(`The user is finishing their agent build with this message:

%s

Conversation so far:
%s

Provide final setup and usage instructions for the generated agent and say goodbye.`,
		state.LatestUserMessage, renderHistory(state.MessageHistory))

	answer, err := s.completions.GenerateStream(ctx, finalizeSystemPrompt, prompt, llm.GenerationParams{}, sink.Emit)
	if err != nil {
		stageErr := NewStageError(StageFinalize, err)
		span.RecordError(stageErr)
		s.logger.Error("finalization generation failed, using fallback farewell",
			slog.String("session_id", state.SessionID),
			slog.String("error", stageErr.Error()),
		)
		answer = "Your agent build is complete. Review the generated files above for setup and usage. Goodbye!"
		if emitErr := sink.Emit(answer); emitErr != nil {
			s.logger.Warn("sink rejected fallback chunk",
				slog.String("session_id", state.SessionID),
				slog.String("error", emitErr.Error()),
			)
		}
	}

	state.AppendRecord(RoleAssistant, answer)
	state.Status = StatusCompleted
	s.logger.Info("session finalized",
		slog.String("session_id", state.SessionID),
	)
}

// renderHistory flattens the message history for prompt context.
func renderHistory(history []MessageRecord) string {
	var b strings.Builder
	for _, record := range history {
		fmt.Fprintf(&b, "%s: %s\n", record.Role, record.Content)
	}
	return b.String()
}
