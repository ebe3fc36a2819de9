package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// WithRetry wraps a CompletionClient so transient provider failures are
// retried up to maxAttempts total attempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop immediately.
func WithRetry(next CompletionClient, maxAttempts int, baseDelay time.Duration) CompletionClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return &retrying{next: next, max: maxAttempts, base: baseDelay}
}

type retrying struct {
	next CompletionClient
	max  int
	base time.Duration
}

func (r *retrying) ModelName() string { return r.next.ModelName() }

func (r *retrying) Generate(ctx context.Context, systemPrompt, prompt string, params GenerationParams) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		text, err := r.next.Generate(ctx, systemPrompt, prompt, params)
		if err == nil {
			return text, nil
		}
		if !retryable(err) {
			return "", err
		}
		last = err
		if i < r.max-1 {
			slog.Warn("completion attempt failed, retrying",
				"attempt", i+1, "max_attempts", r.max, "error", err)
			if err := sleep(ctx, r.base<<uint(i)); err != nil {
				return "", err
			}
		}
	}
	return "", last
}

func (r *retrying) GenerateStream(ctx context.Context, systemPrompt, prompt string, params GenerationParams, onDelta func(string) error) (string, error) {
	// Retrying after chunks were already forwarded would duplicate output,
	// so streaming only retries failures that happen before the first delta.
	delivered := false
	wrapped := func(delta string) error {
		delivered = true
		if onDelta == nil {
			return nil
		}
		return onDelta(delta)
	}

	var last error
	for i := 0; i < r.max; i++ {
		text, err := r.next.GenerateStream(ctx, systemPrompt, prompt, params, wrapped)
		if err == nil {
			return text, nil
		}
		if delivered || !retryable(err) {
			return text, err
		}
		last = err
		if i < r.max-1 {
			slog.Warn("streaming attempt failed before first token, retrying",
				"attempt", i+1, "max_attempts", r.max, "error", err)
			if err := sleep(ctx, r.base<<uint(i)); err != nil {
				return "", err
			}
		}
	}
	return "", last
}

func retryable(err error) bool {
	var pErr *PermanentError
	if errors.As(err, &pErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
