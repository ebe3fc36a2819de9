// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// ParseGraphQLResponse unmarshals a Weaviate GraphQL response into a typed struct.
//
// # Description
//
// The Weaviate client returns query data as map[string]interface{}. This helper
// round-trips the data through JSON to fill a typed response struct, so callers
// work with fields instead of type assertions.
//
// # Inputs
//
//   - resp: Raw GraphQL response from the Weaviate client.
//
// # Outputs
//
//   - *T: Typed response. Nil on error.
//   - error: Non-nil if resp is nil, or the data does not match T.
//
// # Example
//
//	parsed, err := ParseGraphQLResponse[AgentTemplateQueryResponse](result)
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, gqlErr := range resp.Errors {
			if gqlErr != nil {
				msgs = append(msgs, gqlErr.Message)
			}
		}
		return nil, fmt.Errorf("GraphQL query returned errors: %v", msgs)
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// =============================================================================
// Common Weaviate Response Types
// =============================================================================

// AgentTemplateQueryResponse represents the response from querying the
// AgentTemplate class.
type AgentTemplateQueryResponse struct {
	Get struct {
		AgentTemplate []AgentTemplateResult `json:"AgentTemplate"`
	} `json:"Get"`
}

// AgentTemplateResult represents a single agent template from a query.
//
// # Fields
//
//   - Purpose: Human-readable description of what the template builds.
//   - AgentsCode, ToolsCode, TasksCode, CrewCode: The template's source
//     components. Any of them may be empty.
//   - Additional.Certainty: Similarity score in [0, 1] when the query used
//     nearVector; nil for filter-only queries.
type AgentTemplateResult struct {
	Purpose    string `json:"purpose"`
	FolderName string `json:"folder_name"`
	AgentsCode string `json:"agents_code"`
	ToolsCode  string `json:"tools_code"`
	TasksCode  string `json:"tasks_code"`
	CrewCode   string `json:"crew_code"`
	Additional struct {
		ID        string   `json:"id"`
		Certainty *float32 `json:"certainty"`
	} `json:"_additional"`
}

// DocPageQueryResponse represents the response from querying the DocPage class.
type DocPageQueryResponse struct {
	Get struct {
		DocPage []DocPageResult `json:"DocPage"`
	} `json:"Get"`
}

// DocPageResult represents a single documentation page chunk from a query.
type DocPageResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ChunkNumber *int   `json:"chunk_number"`
	Additional  struct {
		ID        string   `json:"id"`
		Certainty *float32 `json:"certainty"`
	} `json:"_additional"`
}
