// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package templates finds previously generated agent code bundles that are
// similar to a new request and adapts them, trading full generation for
// cheaper reuse.
package templates

import "context"

// Canonical component names of a stored artifact.
const (
	ComponentAgents = "agents"
	ComponentTasks  = "tasks"
	ComponentTools  = "tools"
	ComponentCrew   = "crew"
)

// ComponentNames lists the canonical components in a stable order.
var ComponentNames = []string{ComponentAgents, ComponentTasks, ComponentTools, ComponentCrew}

// Artifact is a previously generated multi-component code bundle.
//
// Retrieved artifacts are read-only: adaptation always produces a new
// component map and never mutates the retrieved one.
type Artifact struct {
	Purpose    string            `json:"purpose"`
	Components map[string]string `json:"components"`
}

// HasCode reports whether any component carries non-empty source text.
func (a *Artifact) HasCode() bool {
	for _, code := range a.Components {
		if code != "" {
			return true
		}
	}
	return false
}

// Match pairs an artifact with its similarity score, in [0, 1].
type Match struct {
	Artifact Artifact `json:"artifact"`
	Score    float64  `json:"score"`
}

// ArtifactStore is the read contract the retriever needs from the vector
// store.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use across sessions.
type ArtifactStore interface {
	// SimilaritySearch returns matches with score >= threshold, ranked
	// descending, at most limit. An empty result is not an error.
	SimilaritySearch(ctx context.Context, vector []float32, threshold float64, limit int) ([]Match, error)

	// KeywordSearch returns artifacts whose purpose contains the substring,
	// case-insensitively. An empty result is not an error.
	KeywordSearch(ctx context.Context, substring string) ([]Artifact, error)
}

// Embedder computes the query vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer is the completion capability the adapter needs.
type Completer interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}
