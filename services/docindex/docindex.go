// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docindex exposes the ingested framework documentation that code
// generation uses as reference context.
package docindex

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"

	"github.com/varunisrani/cogentxui/services/orchestrator/datatypes"
)

var tracer = otel.Tracer("cogentx.docindex")

const docPageClass = "DocPage"

// maxChunksPerQuery bounds a single listing or page fetch.
const maxChunksPerQuery = 1000

// Index reads documentation pages stored as chunks in the DocPage class.
//
// # Description
//
// Pages are ingested in chunks, one Weaviate object per chunk, keyed by URL
// with a sequential chunk_number. The index lists distinct page URLs and
// reassembles a page from its chunks in order.
//
// # Thread Safety
//
// Index is safe for concurrent use.
type Index struct {
	client *weaviate.Client
}

// NewIndex creates a documentation index over the given client.
func NewIndex(client *weaviate.Client) *Index {
	return &Index{client: client}
}

// ListPages returns the distinct URLs of all ingested documentation pages.
//
// # Outputs
//
//   - []string: Sorted unique page URLs. Empty when nothing is ingested.
//   - error: Non-nil if the query or response parsing fails.
//
// # Limitations
//
//   - Reads at most maxChunksPerQuery chunks; an index larger than that
//     returns a truncated listing.
func (i *Index) ListPages(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "docindex.ListPages")
	defer span.End()

	result, err := i.client.GraphQL().Get().
		WithClassName(docPageClass).
		WithFields(graphql.Field{Name: "url"}).
		WithLimit(maxChunksPerQuery).
		Do(ctx)
	if err != nil {
		slog.Error("Failed to list DocPage urls", "error", err)
		return nil, fmt.Errorf("weaviate query failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.DocPageQueryResponse](result)
	if err != nil {
		slog.Error("Failed to parse DocPage listing", "error", err)
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	seen := make(map[string]bool)
	urls := make([]string, 0)
	for _, page := range parsed.Get.DocPage {
		if page.URL == "" || seen[page.URL] {
			continue
		}
		seen[page.URL] = true
		urls = append(urls, page.URL)
	}
	sort.Strings(urls)

	slog.Debug("Listed documentation pages", "count", len(urls))
	return urls, nil
}

// GetPage reassembles the full text of one documentation page.
//
// # Description
//
// Fetches every chunk for the URL, orders them by chunk_number, and joins
// their content. The page title comes from the first chunk.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - url: The page URL as returned by ListPages.
//
// # Outputs
//
//   - string: The page text, titled with a markdown heading. Empty when the
//     URL is unknown.
//   - error: Non-nil if the query or response parsing fails.
func (i *Index) GetPage(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "docindex.GetPage")
	defer span.End()

	urlFilter := filters.Where().
		WithPath([]string{"url"}).
		WithOperator(filters.Equal).
		WithValueString(url)

	result, err := i.client.GraphQL().Get().
		WithClassName(docPageClass).
		WithFields(
			graphql.Field{Name: "url"},
			graphql.Field{Name: "title"},
			graphql.Field{Name: "content"},
			graphql.Field{Name: "chunk_number"},
		).
		WithWhere(urlFilter).
		WithLimit(maxChunksPerQuery).
		Do(ctx)
	if err != nil {
		slog.Error("Failed to fetch DocPage chunks", "url", url, "error", err)
		return "", fmt.Errorf("weaviate query failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.DocPageQueryResponse](result)
	if err != nil {
		slog.Error("Failed to parse DocPage chunks", "url", url, "error", err)
		return "", fmt.Errorf("failed to parse results: %w", err)
	}

	chunks := parsed.Get.DocPage
	if len(chunks) == 0 {
		slog.Debug("No chunks for documentation page", "url", url)
		return "", nil
	}

	sort.Slice(chunks, func(a, b int) bool {
		return chunkNumber(chunks[a]) < chunkNumber(chunks[b])
	})

	var b strings.Builder
	if title := chunks[0].Title; title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for idx, chunk := range chunks {
		if idx > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunk.Content)
	}
	return b.String(), nil
}

func chunkNumber(chunk datatypes.DocPageResult) int {
	if chunk.ChunkNumber == nil {
		return 0
	}
	return *chunk.ChunkNumber
}
