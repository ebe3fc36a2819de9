// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/varunisrani/cogentxui/pkg/logging"
	"github.com/varunisrani/cogentxui/services/docindex"
	"github.com/varunisrani/cogentxui/services/llm"
	"github.com/varunisrani/cogentxui/services/orchestrator/datatypes"
	"github.com/varunisrani/cogentxui/services/orchestrator/observability"
	"github.com/varunisrani/cogentxui/services/orchestrator/routes"
	"github.com/varunisrani/cogentxui/services/templates"
	"github.com/varunisrani/cogentxui/services/workflow"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

const (
	defaultPort       = "12310"
	llmRetryAttempts  = 3
	llmRetryBaseDelay = 500 * time.Millisecond
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "cogentx-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("agent-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newWeaviateClient parses WEAVIATE_SERVICE_URL and connects, or returns nil
// when the service runs without a template library.
func newWeaviateClient() *weaviate.Client {
	weaviateURL := os.Getenv("WEAVIATE_SERVICE_URL")
	// Sanitize: Trim quotes and whitespace just in case the container
	// runtime passes them literally
	weaviateURL = strings.Trim(weaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("WEAVIATE_SERVICE_URL not set or empty. Running without template retrieval (full generation only).")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		slog.Warn("WEAVIATE_SERVICE_URL is invalid. Running without template retrieval.",
			"url", weaviateURL, "error", err)
		return nil
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}
	client, err := weaviate.NewClient(clientConf)
	if err != nil {
		slog.Error("Failed to create Weaviate client", "error", err)
		return nil
	}
	datatypes.EnsureWeaviateSchema(client)
	return client
}

// newCheckpointStore opens a Badger-backed store when CHECKPOINT_DIR is set,
// otherwise keeps checkpoints in memory.
func newCheckpointStore(logger *slog.Logger) workflow.CheckpointStore {
	dir := os.Getenv("CHECKPOINT_DIR")
	if dir == "" {
		slog.Warn("CHECKPOINT_DIR not set, sessions will not survive restarts")
		return workflow.NewMemoryCheckpointStore()
	}
	store, err := workflow.NewBadgerCheckpointStore(dir, logger)
	if err != nil {
		log.Fatalf("Failed to open checkpoint store at %s: %v", dir, err)
	}
	return store
}

// completerAdapter exposes a CompletionClient as the single-method completer
// the template adapter wants.
type completerAdapter struct {
	client llm.CompletionClient
}

func (a completerAdapter) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return a.client.Generate(ctx, systemPrompt, prompt, llm.GenerationParams{})
}

func main() {
	port := os.Getenv("AGENT_SERVICE_PORT")
	if port == "" {
		port = defaultPort
	}

	logger := logging.New(logging.FromEnv("agent-service"))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	log.Println("Configuring the LLM Client")
	baseClient, err := llm.NewOpenAIClient()
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	client := llm.WithRetry(baseClient, llmRetryAttempts, llmRetryBaseDelay)

	weaviateClient := newWeaviateClient()

	var finder workflow.TemplateFinder
	var adapter workflow.TemplateAdapter
	var docs workflow.DocLister
	if weaviateClient != nil {
		embedder, err := llm.NewOpenAIEmbedder()
		if err != nil {
			slog.Warn("Embedder unavailable, template retrieval disabled", "error", err)
		} else {
			store := templates.NewWeaviateArtifactStore(weaviateClient)
			finder = templates.NewRetriever(store, embedder, templates.DefaultRetrieverConfig(), logger)
			adapter = templates.NewAdapter(completerAdapter{client: client}, logger)
		}
		docs = docindex.NewIndex(weaviateClient)
	}

	stages := workflow.NewStages(client, finder, adapter, docs, logger)
	if reasonerModel := os.Getenv("REASONER_MODEL"); reasonerModel != "" {
		reasoner, err := llm.NewOpenAIClientWithModel(reasonerModel)
		if err != nil {
			log.Fatalf("Failed to initialize reasoner client: %v", err)
		}
		stages.WithReasoner(llm.WithRetry(reasoner, llmRetryAttempts, llmRetryBaseDelay))
	}
	engine, err := workflow.NewEngine(stages, newCheckpointStore(logger), workflow.EngineConfig{
		ModelName:   client.ModelName(),
		StrictModel: os.Getenv("WORKFLOW_STRICT_MODEL") == "1",
	}, logger)
	if err != nil {
		log.Fatalf("Failed to build the workflow engine: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("agent-service"))

	routes.SetupRoutes(router, engine, os.Getenv("AGENT_API_KEY"))

	log.Println("Starting the agent service on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
