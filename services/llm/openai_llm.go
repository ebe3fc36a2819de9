package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client from OPENAI_API_KEY / OPENAI_MODEL /
// OPENAI_BASE_URL. The key may also be provided via container secret.
func NewOpenAIClient() (*OpenAIClient, error) {
	return NewOpenAIClientWithModel(os.Getenv("OPENAI_MODEL"))
}

// NewOpenAIClientWithModel builds a client pinned to a specific model. The
// workflow uses this to run its scope stage on a stronger reasoning model
// than the primary one.
func NewOpenAIClientWithModel(model string) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from container secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("model not set, defaulting to gpt-4o-mini")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}

	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (o *OpenAIClient) ModelName() string { return o.model }

// Generate implements the CompletionClient interface.
func (o *OpenAIClient) Generate(ctx context.Context, systemPrompt, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via OpenAI", "model", o.model)

	resp, err := o.client.CreateChatCompletion(ctx, o.buildRequest(systemPrompt, prompt, params))
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return "", classify(fmt.Errorf("OpenAI API call failed: %w", err))
	}

	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return "", ErrEmptyResponse
	}
	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream implements the CompletionClient interface. Each content
// delta is forwarded to onDelta in arrival order. A non-nil error from
// onDelta stops delivery but lets the request drain.
func (o *OpenAIClient) GenerateStream(ctx context.Context, systemPrompt, prompt string, params GenerationParams, onDelta func(string) error) (string, error) {
	req := o.buildRequest(systemPrompt, prompt, params)
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		slog.Error("OpenAI streaming call failed", "error", err)
		return "", classify(fmt.Errorf("OpenAI streaming call failed: %w", err))
	}
	defer stream.Close()

	var full strings.Builder
	deliver := onDelta
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return full.String(), classify(fmt.Errorf("OpenAI stream read failed: %w", err))
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if deliver != nil {
			if err := deliver(delta); err != nil {
				// Receiver is gone. Keep draining so the full text is intact.
				slog.Debug("stream receiver closed, draining remainder", "error", err)
				deliver = nil
			}
		}
	}
	return full.String(), nil
}

func (o *OpenAIClient) buildRequest(systemPrompt, prompt string, params GenerationParams) openai.ChatCompletionRequest {
	if systemPrompt == "" {
		systemPrompt = "You are a helpful assistant."
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}
	return req
}

// classify marks request-shape failures as permanent so the retry wrapper
// does not burn attempts on them.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 400, 401, 403, 404, 422:
			return Permanent(err)
		}
	}
	return err
}
