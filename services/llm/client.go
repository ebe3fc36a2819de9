package llm

import "context"

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// CompletionClient defines the standard interface for any completion backend.
// Generate returns the full response text. GenerateStream forwards each text
// delta to onDelta as it arrives and returns the accumulated text; backends
// without incremental delivery call onDelta once with the whole response.
type CompletionClient interface {
	Generate(ctx context.Context, systemPrompt, prompt string, params GenerationParams) (string, error)
	GenerateStream(ctx context.Context, systemPrompt, prompt string, params GenerationParams, onDelta func(string) error) (string, error)
	ModelName() string
}

// EmbeddingClient produces fixed-length vectors for similarity search.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
