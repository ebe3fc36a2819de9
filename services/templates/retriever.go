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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("cogentx.templates")

// RetrieverConfig controls the fallback chain.
type RetrieverConfig struct {
	// HighThreshold is tried first. Defaults to 0.5 with HighLimit 5.
	HighThreshold float64
	HighLimit     int

	// LowThreshold is the backoff pass. Defaults to 0.3 with LowLimit 10.
	LowThreshold float64
	LowLimit     int

	// Keywords are substring-matched against artifact purposes when both
	// similarity passes come back empty.
	Keywords []string
}

// DefaultRetrieverConfig returns the standard thresholds and keyword list.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		HighThreshold: 0.5,
		HighLimit:     5,
		LowThreshold:  0.3,
		LowLimit:      10,
		Keywords:      []string{"newsletter", "write", "content", "article"},
	}
}

// Retriever finds the best prior artifact for a request.
//
// # Description
//
// The retrieval chain is total: it either produces a match or an explicit
// no-match, never an error for "nothing found". Chain: similarity search at
// the high threshold, backoff to the low threshold, then keyword substring
// search over artifact purposes.
//
// # Thread Safety
//
// Safe for concurrent use.
type Retriever struct {
	store    ArtifactStore
	embedder Embedder
	config   RetrieverConfig
	logger   *slog.Logger
}

// NewRetriever wires the retriever. Invalid config values fall back to
// defaults with a logged warning.
func NewRetriever(store ArtifactStore, embedder Embedder, config RetrieverConfig, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultRetrieverConfig()
	if config.HighThreshold <= 0 || config.HighThreshold > 1 {
		logger.Warn("invalid HighThreshold, using default",
			"provided", config.HighThreshold, "default", defaults.HighThreshold)
		config.HighThreshold = defaults.HighThreshold
	}
	if config.HighLimit < 1 {
		config.HighLimit = defaults.HighLimit
	}
	if config.LowThreshold <= 0 || config.LowThreshold > config.HighThreshold {
		logger.Warn("invalid LowThreshold, using default",
			"provided", config.LowThreshold, "default", defaults.LowThreshold)
		config.LowThreshold = defaults.LowThreshold
	}
	if config.LowLimit < 1 {
		config.LowLimit = defaults.LowLimit
	}
	if len(config.Keywords) == 0 {
		config.Keywords = defaults.Keywords
	}
	return &Retriever{store: store, embedder: embedder, config: config, logger: logger}
}

// FindSimilar runs the fallback chain for the user's request.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - query: The user's request text.
//
// # Outputs
//
//   - *Match: The best match, nil when found is false.
//   - bool: False means the chain exhausted without a usable template.
//   - error: Non-nil only for infrastructure failures (embedding or store
//     errors); empty results never error.
func (r *Retriever) FindSimilar(ctx context.Context, query string) (*Match, bool, error) {
	ctx, span := tracer.Start(ctx, "templates.FindSimilar")
	defer span.End()

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("embed query: %w", err)
	}

	// Pass 1: high threshold.
	matches, err := r.store.SimilaritySearch(ctx, vector, r.config.HighThreshold, r.config.HighLimit)
	if err != nil {
		return nil, false, fmt.Errorf("similarity search: %w", err)
	}

	// Pass 2: backoff to the low threshold.
	if len(matches) == 0 {
		r.logger.Debug("no matches at high threshold, backing off",
			slog.Float64("threshold", r.config.LowThreshold))
		matches, err = r.store.SimilaritySearch(ctx, vector, r.config.LowThreshold, r.config.LowLimit)
		if err != nil {
			return nil, false, fmt.Errorf("similarity search (backoff): %w", err)
		}
	}

	if len(matches) > 0 {
		best := bestOf(matches)
		span.SetAttributes(
			attribute.String("template.purpose", best.Artifact.Purpose),
			attribute.Float64("template.score", best.Score),
		)
		r.logger.Info("found similar template",
			slog.String("purpose", best.Artifact.Purpose),
			slog.Float64("score", best.Score),
		)
		return best, true, nil
	}

	// Pass 3: keyword substring search over purposes.
	for _, keyword := range r.config.Keywords {
		artifacts, err := r.store.KeywordSearch(ctx, keyword)
		if err != nil {
			return nil, false, fmt.Errorf("keyword search %q: %w", keyword, err)
		}
		if len(artifacts) > 0 {
			r.logger.Info("found template via keyword fallback", slog.String("keyword", keyword))
			span.SetAttributes(attribute.String("template.keyword", keyword))
			return &Match{Artifact: artifacts[0]}, true, nil
		}
	}

	r.logger.Info("no template match for request")
	span.SetAttributes(attribute.Bool("template.no_match", true))
	return nil, false, nil
}

// bestOf returns the highest-scoring match regardless of store ordering.
func bestOf(matches []Match) *Match {
	best := &matches[0]
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > best.Score {
			best = &matches[i]
		}
	}
	return best
}
