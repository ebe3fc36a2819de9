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

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/varunisrani/cogentxui/services/orchestrator/datatypes"
)

const templateClass = "AgentTemplate"

// WeaviateArtifactStore implements ArtifactStore over a Weaviate instance.
//
// # Description
//
// Templates live in the AgentTemplate class with one property per code
// component plus a purpose description. Similarity search runs nearVector
// with a certainty floor; keyword search runs a Like filter over purpose.
//
// # Thread Safety
//
// WeaviateArtifactStore is safe for concurrent use. The underlying Weaviate
// client handles connection pooling.
//
// # Example
//
//	store := NewWeaviateArtifactStore(client)
//	matches, err := store.SimilaritySearch(ctx, vector, 0.5, 5)
type WeaviateArtifactStore struct {
	client *weaviate.Client
}

// NewWeaviateArtifactStore creates a new template store.
func NewWeaviateArtifactStore(client *weaviate.Client) *WeaviateArtifactStore {
	return &WeaviateArtifactStore{client: client}
}

// SimilaritySearch retrieves templates whose purpose embedding is at least
// threshold-similar to the query vector.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - vector: Query embedding.
//   - threshold: Minimum certainty in [0, 1]. Results below it are excluded
//     by Weaviate itself.
//   - limit: Maximum number of matches to return.
//
// # Outputs
//
//   - []Match: Matching templates with certainty as score, best first.
//   - error: Non-nil if the query or response parsing fails.
//
// # Limitations
//
//   - Embedding dimensions must match stored vectors.
func (s *WeaviateArtifactStore) SimilaritySearch(ctx context.Context, vector []float32, threshold float64, limit int) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "templates.SimilaritySearch")
	defer span.End()

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector).
		WithCertainty(float32(threshold))

	result, err := s.client.GraphQL().Get().
		WithClassName(templateClass).
		WithFields(templateFields()...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		slog.Error("Failed to search AgentTemplate class", "error", err)
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.AgentTemplateQueryResponse](result)
	if err != nil {
		slog.Error("Failed to parse template search results", "error", err)
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Get.AgentTemplate))
	for _, tpl := range parsed.Get.AgentTemplate {
		var score float64
		if tpl.Additional.Certainty != nil {
			score = float64(*tpl.Additional.Certainty)
		}
		matches = append(matches, Match{
			Artifact: artifactFromResult(tpl),
			Score:    score,
		})
	}

	slog.Debug("Template similarity search finished",
		"threshold", threshold, "limit", limit, "count", len(matches))
	return matches, nil
}

// KeywordSearch retrieves templates whose purpose contains the substring.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - substring: Case-insensitive token to match within purpose.
//
// # Outputs
//
//   - []Artifact: Matching templates in store order.
//   - error: Non-nil if the query or response parsing fails.
func (s *WeaviateArtifactStore) KeywordSearch(ctx context.Context, substring string) ([]Artifact, error) {
	ctx, span := tracer.Start(ctx, "templates.KeywordSearch")
	defer span.End()

	purposeFilter := filters.Where().
		WithPath([]string{"purpose"}).
		WithOperator(filters.Like).
		WithValueText(fmt.Sprintf("*%s*", substring))

	result, err := s.client.GraphQL().Get().
		WithClassName(templateClass).
		WithFields(templateFields()...).
		WithWhere(purposeFilter).
		Do(ctx)
	if err != nil {
		slog.Error("Failed keyword search on AgentTemplate class", "error", err)
		return nil, fmt.Errorf("weaviate query failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.AgentTemplateQueryResponse](result)
	if err != nil {
		slog.Error("Failed to parse keyword search results", "error", err)
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	artifacts := make([]Artifact, 0, len(parsed.Get.AgentTemplate))
	for _, tpl := range parsed.Get.AgentTemplate {
		artifacts = append(artifacts, artifactFromResult(tpl))
	}

	slog.Debug("Template keyword search finished",
		"substring", substring, "count", len(artifacts))
	return artifacts, nil
}

func templateFields() []graphql.Field {
	return []graphql.Field{
		{Name: "purpose"},
		{Name: "folder_name"},
		{Name: "agents_code"},
		{Name: "tools_code"},
		{Name: "tasks_code"},
		{Name: "crew_code"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}
}

// artifactFromResult keeps only non-empty components so HasCode reflects
// what the template actually carries.
func artifactFromResult(tpl datatypes.AgentTemplateResult) Artifact {
	components := make(map[string]string, 4)
	for name, code := range map[string]string{
		ComponentAgents: tpl.AgentsCode,
		ComponentTools:  tpl.ToolsCode,
		ComponentTasks:  tpl.TasksCode,
		ComponentCrew:   tpl.CrewCode,
	} {
		if code != "" {
			components[name] = code
		}
	}
	return Artifact{
		Purpose:    tpl.Purpose,
		Components: components,
	}
}
