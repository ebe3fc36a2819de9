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
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

func GetAgentTemplateSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "AgentTemplate",
		Description: "A reusable agent project template with its code components.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "purpose",
				DataType:     []string{"text"},
				Description:  "What the template builds, in natural language.",
				Tokenization: "word",
			},
			{
				Name:            "folder_name",
				DataType:        []string{"text"},
				Description:     "The template's directory name in the template library.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "agents_code",
				DataType:     []string{"text"},
				Description:  "Agent definitions component.",
				Tokenization: "word",
			},
			{
				Name:         "tools_code",
				DataType:     []string{"text"},
				Description:  "Tool implementations component.",
				Tokenization: "word",
			},
			{
				Name:         "tasks_code",
				DataType:     []string{"text"},
				Description:  "Task definitions component.",
				Tokenization: "word",
			},
			{
				Name:         "crew_code",
				DataType:     []string{"text"},
				Description:  "Top-level wiring component.",
				Tokenization: "word",
			},
			{
				Name:            "ingested_at",
				DataType:        []string{"number"},
				Description:     "Timestamp (Unix ms) of when the template was ingested.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

func GetDocPageSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "DocPage",
		Description: "A chunk of framework documentation used as generation context.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:            "url",
				DataType:        []string{"text"},
				Description:     "Source URL of the documentation page.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "title",
				DataType:     []string{"text"},
				Description:  "Page title.",
				Tokenization: "word",
			},
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The chunk's text content.",
				Tokenization: "word",
			},
			{
				Name:            "chunk_number",
				DataType:        []string{"int"},
				Description:     "Sequential chunk index within the page (0-indexed).",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "ingested_at",
				DataType:        []string{"number"},
				Description:     "Timestamp (Unix ms) of when the chunk was ingested.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

func EnsureWeaviateSchema(client *weaviate.Client) {
	// A list of functions that return our schema definitions.
	schemaGetters := []func() *models.Class{
		GetAgentTemplateSchema,
		GetDocPageSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		// Check if the class already exists.
		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			// If it doesn't exist, the client returns an error. We can now create it.
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				// If we fail to create it, it's a fatal error.
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
