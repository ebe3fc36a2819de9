// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const adapterSystemPrompt = "You are an expert at adapting existing AI agent code to new requirements. " +
	"You keep the original structure and conventions and change only what the requirements demand."

// Adapter rewrites a retrieved artifact's components to satisfy new
// requirements, one completion call per component.
//
// # Description
//
// Components adapt independently, so they run concurrently. A component
// whose completion call fails or returns empty text is simply absent from
// the result; callers must treat an entirely empty result as adaptation
// failure, not as "no changes needed".
//
// # Thread Safety
//
// Safe for concurrent use.
type Adapter struct {
	completer Completer
	logger    *slog.Logger
}

// NewAdapter wires the adapter.
func NewAdapter(completer Completer, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{completer: completer, logger: logger}
}

// Adapt produces a new component map for the artifact.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - artifact: The retrieved template. Never mutated.
//   - requirements: The user's request text.
//   - architecture: The current architecture plan, for context.
//
// # Outputs
//
//   - map[string]string: Adapted code per component. May be empty.
//   - error: Non-nil only when the context is done; per-component failures
//     degrade to omission.
func (a *Adapter) Adapt(ctx context.Context, artifact Artifact, requirements, architecture string) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "templates.Adapt")
	defer span.End()

	adapted := make(map[string]string, len(artifact.Components))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, code := range artifact.Components {
		if strings.TrimSpace(code) == "" {
			continue
		}
		g.Go(func() error {
			text, err := a.adaptComponent(gctx, name, code, requirements, architecture)
			if err != nil {
				a.logger.Warn("component adaptation failed",
					slog.String("component", name), slog.String("error", err.Error()))
				return nil
			}
			if strings.TrimSpace(text) == "" {
				a.logger.Warn("component adaptation returned empty code",
					slog.String("component", name))
				return nil
			}
			mu.Lock()
			adapted[name] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Info("template adaptation finished",
		slog.Int("requested", len(artifact.Components)),
		slog.Int("adapted", len(adapted)),
	)
	return adapted, nil
}

func (a *Adapter) adaptComponent(ctx context.Context, name, code, requirements, architecture string) (string, error) {
	prompt := fmt.Sprintf(`Original template code for %s:
%s

User requirements:
%s

Architecture plan:
%s

Adapt this code to match the user requirements while maintaining the same structure.
Return ONLY the adapted code, no explanations.`, name, code, requirements, architecture)

	text, err := a.completer.Generate(ctx, adapterSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("adapt %s: %w", name, err)
	}
	return stripFences(text), nil
}

// stripFences removes a single wrapping markdown code fence if present.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return trimmed
}
