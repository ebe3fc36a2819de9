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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cogentx.workflow")
	meter  = otel.Meter("cogentx.workflow")
)

// Engine drives sessions through the stage graph with suspend and resume.
//
// # Description
//
// A new session runs Scope, Architecture, ImplementationPlan and
// CodeGeneration in order, then parks at the await-input node by persisting
// a checkpoint. Resume routes the user's next message: a continue decision
// runs CodeGeneration again and parks again; a finish decision runs
// Finalization and completes the session. The checkpoint stays after
// completion so a late resume is rejected as an invalid session instead of
// being indistinguishable from an unknown one.
//
// # Thread Safety
//
// Engine is safe for concurrent use across sessions. Concurrent calls for
// the same session id are rejected with ErrSessionBusy rather than
// interleaved.
type Engine struct {
	stages      *Stages
	checkpoints CheckpointStore
	modelName   string
	strictModel bool
	logger      *slog.Logger

	// Metrics (initialized lazily)
	metricsOnce    sync.Once
	runLatency     metric.Float64Histogram
	runSuccesses   metric.Int64Counter
	runFailures    metric.Int64Counter
	suspensions    metric.Int64Counter
	activeSessions metric.Int64UpDownCounter

	mu   sync.Mutex
	busy map[string]bool
}

// EngineConfig tunes engine behavior beyond its collaborators.
type EngineConfig struct {
	// ModelName is recorded in checkpoints and compared on resume.
	ModelName string

	// StrictModel rejects resumes whose checkpoint was written under a
	// different completion model instead of proceeding with a warning.
	StrictModel bool
}

// NewEngine creates the session engine.
//
// # Inputs
//
//   - stages: The stage implementations. Must not be nil.
//   - checkpoints: Checkpoint persistence. Must not be nil.
//   - config: Model identity and resume policy.
//   - logger: Logger for session logs. If nil, uses slog.Default().
//
// # Outputs
//
//   - *Engine: The configured engine.
//   - error: Non-nil if a required collaborator is missing.
func NewEngine(stages *Stages, checkpoints CheckpointStore, config EngineConfig, logger *slog.Logger) (*Engine, error) {
	if stages == nil {
		return nil, fmt.Errorf("stages must not be nil")
	}
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		stages:      stages,
		checkpoints: checkpoints,
		modelName:   config.ModelName,
		strictModel: config.StrictModel,
		logger:      logger,
		busy:        make(map[string]bool),
	}, nil
}

// initMetrics lazily initializes metrics.
// Logs errors if metric creation fails but continues execution (graceful degradation).
func (e *Engine) initMetrics() {
	e.metricsOnce.Do(func() {
		var initErrors []string

		var err error
		e.runLatency, err = meter.Float64Histogram("workflow_run_duration_seconds",
			metric.WithDescription("Time spent driving a session through the graph per call"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "run_latency: "+err.Error())
		}

		e.runSuccesses, err = meter.Int64Counter("workflow_run_success_total",
			metric.WithDescription("Number of run/resume calls that ended in a value or suspension"),
		)
		if err != nil {
			initErrors = append(initErrors, "run_successes: "+err.Error())
		}

		e.runFailures, err = meter.Int64Counter("workflow_run_failure_total",
			metric.WithDescription("Number of run/resume calls that ended in failure"),
		)
		if err != nil {
			initErrors = append(initErrors, "run_failures: "+err.Error())
		}

		e.suspensions, err = meter.Int64Counter("workflow_suspension_total",
			metric.WithDescription("Number of checkpoints written at the await-input node"),
		)
		if err != nil {
			initErrors = append(initErrors, "suspensions: "+err.Error())
		}

		e.activeSessions, err = meter.Int64UpDownCounter("workflow_active_sessions",
			metric.WithDescription("Number of sessions currently executing stages"),
		)
		if err != nil {
			initErrors = append(initErrors, "active_sessions: "+err.Error())
		}

		if len(initErrors) > 0 {
			e.logger.Error("failed to initialize some workflow metrics (observability degraded)",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}

// acquire marks the session in-flight, rejecting concurrent drivers.
func (e *Engine) acquire(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy[sessionID] {
		return fmt.Errorf("%w: %s", ErrSessionBusy, sessionID)
	}
	e.busy[sessionID] = true
	return nil
}

func (e *Engine) release(sessionID string) {
	e.mu.Lock()
	delete(e.busy, sessionID)
	e.mu.Unlock()
}

// Run starts a new session from the user's first message.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - sessionID: Caller-chosen id; empty generates one.
//   - message: The user's request. Must be non-empty.
//   - sink: Receives streamed chunks. Nil means discard.
//
// # Outputs
//
//   - *Outcome: Suspended with the parked checkpoint on the normal path;
//     Failure for invalid input, a busy or already-existing session, or a
//     checkpoint write failure. Provider failures inside stages degrade and
//     still suspend.
func (e *Engine) Run(ctx context.Context, sessionID, message string, sink StreamSink) *Outcome {
	if sink == nil {
		sink = NopSink{}
	}
	if ctx == nil {
		sink.Error(ErrNilContext)
		return FailureOutcome(ErrNilContext)
	}
	if message == "" {
		err := fmt.Errorf("%w: empty message", ErrInvalidSession)
		sink.Error(err)
		return FailureOutcome(err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	e.initMetrics()

	ctx, span := tracer.Start(ctx, "workflow.Run",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	if err := e.acquire(sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return FailureOutcome(err)
	}
	defer e.release(sessionID)

	// A session id with a checkpoint already has history; starting over
	// through Run would silently drop it.
	if _, err := e.checkpoints.Load(ctx, sessionID); err == nil {
		err := fmt.Errorf("%w: session %s already exists, resume or reset it", ErrInvalidSession, sessionID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return FailureOutcome(err)
	} else if !errors.Is(err, ErrCheckpointNotFound) {
		err = fmt.Errorf("checkpoint lookup: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}

	start := time.Now()
	if e.activeSessions != nil {
		e.activeSessions.Add(ctx, 1)
		defer e.activeSessions.Add(ctx, -1)
	}

	e.logger.Info("session started",
		slog.String("session_id", sessionID),
		slog.Int("message_len", len(message)),
	)

	state := NewConversationState(sessionID, message)
	state.AppendRecord(RoleUser, message)

	e.stages.DefineScope(ctx, state)
	e.stages.CreateArchitecture(ctx, state)
	e.stages.CreateImplementationPlan(ctx, state)
	e.stages.GenerateCode(ctx, state, sink)

	outcome := e.suspend(ctx, state, sink)
	e.recordLatency(ctx, start, "run")
	return outcome
}

// Resume continues a suspended session with the user's next message.
//
// # Outcomes
//
//   - Suspended: the message routed to continue; code generation ran and a
//     fresh checkpoint superseded the old one.
//   - Value: the message routed to finish; the session is completed.
//   - Failure: unknown or completed session, busy session, corrupt or
//     incompatible checkpoint, or (in strict mode) a model mismatch.
func (e *Engine) Resume(ctx context.Context, sessionID, message string, sink StreamSink) *Outcome {
	if sink == nil {
		sink = NopSink{}
	}
	if ctx == nil {
		sink.Error(ErrNilContext)
		return FailureOutcome(ErrNilContext)
	}
	if sessionID == "" {
		err := fmt.Errorf("%w: empty session id", ErrInvalidSession)
		sink.Error(err)
		return FailureOutcome(err)
	}
	if message == "" {
		err := fmt.Errorf("%w: empty message", ErrInvalidSession)
		sink.Error(err)
		return FailureOutcome(err)
	}

	e.initMetrics()

	ctx, span := tracer.Start(ctx, "workflow.Resume",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	if err := e.acquire(sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return FailureOutcome(err)
	}
	defer e.release(sessionID)

	checkpoint, err := e.checkpoints.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrCheckpointNotFound) {
			err = fmt.Errorf("%w: no session %s", ErrInvalidSession, sessionID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}

	if checkpoint.SavedState == nil || checkpoint.SavedState.Status == StatusCompleted {
		err := fmt.Errorf("%w: session %s is completed", ErrInvalidSession, sessionID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}

	if checkpoint.ModelName != e.modelName {
		if e.strictModel {
			err := fmt.Errorf("%w: checkpoint=%s current=%s", ErrModelMismatch, checkpoint.ModelName, e.modelName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			sink.Error(err)
			return e.recordFailure(ctx, err)
		}
		e.logger.Warn("completion model changed since suspension, proceeding",
			slog.String("session_id", sessionID),
			slog.String("checkpoint_model", checkpoint.ModelName),
			slog.String("current_model", e.modelName),
		)
	}

	start := time.Now()
	if e.activeSessions != nil {
		e.activeSessions.Add(ctx, 1)
		defer e.activeSessions.Add(ctx, -1)
	}

	e.logger.Info("session resumed",
		slog.String("session_id", sessionID),
		slog.String("suspended_at", checkpoint.SuspendedAtStage),
	)

	state := checkpoint.SavedState.Clone()
	state.LatestUserMessage = message
	state.Status = StatusRunning
	state.AppendRecord(RoleUser, message)

	decision := e.stages.RouteMessage(ctx, state)
	span.SetAttributes(attribute.String("route.decision", string(decision)))

	if decision == RouteFinish {
		e.stages.Finalize(ctx, state, sink)
		outcome := e.complete(ctx, state, sink)
		e.recordLatency(ctx, start, "resume")
		return outcome
	}

	e.stages.GenerateCode(ctx, state, sink)
	outcome := e.suspend(ctx, state, sink)
	e.recordLatency(ctx, start, "resume")
	return outcome
}

// Reset deletes a session's checkpoint so its id can start fresh.
//
// An in-flight session cannot be reset out from under its driver.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	if ctx == nil {
		return ErrNilContext
	}
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidSession)
	}

	ctx, span := tracer.Start(ctx, "workflow.Reset",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	if err := e.acquire(sessionID); err != nil {
		span.RecordError(err)
		return err
	}
	defer e.release(sessionID)

	if _, err := e.checkpoints.Load(ctx, sessionID); err != nil {
		if errors.Is(err, ErrCheckpointNotFound) {
			err = fmt.Errorf("%w: no session %s", ErrInvalidSession, sessionID)
		}
		span.RecordError(err)
		return err
	}

	if err := e.checkpoints.Delete(ctx, sessionID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete checkpoint: %w", err)
	}

	e.logger.Info("session reset", slog.String("session_id", sessionID))
	return nil
}

// suspend parks the session at the await-input node.
func (e *Engine) suspend(ctx context.Context, state *ConversationState, sink StreamSink) *Outcome {
	state.Status = StatusSuspended

	checkpoint, err := NewCheckpoint(state, StageAwaitInput, e.modelName)
	if err != nil {
		err = fmt.Errorf("snapshot state: %w", err)
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}
	if err := e.checkpoints.Save(ctx, checkpoint); err != nil {
		err = fmt.Errorf("persist checkpoint: %w", err)
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}

	if e.suspensions != nil {
		e.suspensions.Add(ctx, 1)
	}
	if e.runSuccesses != nil {
		e.runSuccesses.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "suspended")))
	}

	e.logger.Info("session suspended",
		slog.String("session_id", state.SessionID),
		slog.Int("history_len", len(state.MessageHistory)),
	)

	sink.Complete()
	return SuspendOutcome(checkpoint)
}

// complete persists the terminal state and closes out the call.
//
// The completed checkpoint is kept so a later resume of this id fails as an
// invalid session rather than looking unknown.
func (e *Engine) complete(ctx context.Context, state *ConversationState, sink StreamSink) *Outcome {
	checkpoint, err := NewCheckpoint(state, StageFinalize, e.modelName)
	if err != nil {
		err = fmt.Errorf("snapshot state: %w", err)
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}
	if err := e.checkpoints.Save(ctx, checkpoint); err != nil {
		err = fmt.Errorf("persist checkpoint: %w", err)
		sink.Error(err)
		return e.recordFailure(ctx, err)
	}

	if e.runSuccesses != nil {
		e.runSuccesses.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "completed")))
	}

	e.logger.Info("session completed",
		slog.String("session_id", state.SessionID),
		slog.Int("history_len", len(state.MessageHistory)),
	)

	sink.Complete()
	return ValueOutcome(state)
}

func (e *Engine) recordFailure(ctx context.Context, err error) *Outcome {
	if e.runFailures != nil {
		e.runFailures.Add(ctx, 1)
	}
	return FailureOutcome(err)
}

func (e *Engine) recordLatency(ctx context.Context, start time.Time, call string) {
	if e.runLatency != nil {
		e.runLatency.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("call", call)),
		)
	}
}
