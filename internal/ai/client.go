package ai

import (
	"context"
	stderrors "errors"

	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"

	"google.golang.org/genai"
)

// ErrDisabled is wrapped in an AI_ERROR by the client used when no key is configured.
var ErrDisabled = stderrors.New("ai client disabled: no api key configured")

// Client is the narrow surface the rest of the backend needs from a model provider.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements Client with the Google Gemini SDK.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	dimensions     int32
}

func NewGeminiClient(ctx context.Context, cfg config.AIConfig, dimensions int32) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrAI, "gemini API key is required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.New(errors.ErrAI, "failed to create gemini client", err)
	}

	return &GeminiClient{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     dimensions,
	}, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := c.dimensions
	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, errors.New(errors.ErrAI, "failed to embed content", err)
	}
	if len(result.Embeddings) == 0 || result.Embeddings[0] == nil || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New(errors.ErrAI, "empty embedding returned", nil)
	}
	return result.Embeddings[0].Values, nil
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", errors.New(errors.ErrAI, "failed to generate content", err)
	}
	return result.Text(), nil
}

type disabledClient struct{}

func (disabledClient) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New(errors.ErrAI, "embedding unavailable", ErrDisabled)
}

func (disabledClient) GenerateJSON(context.Context, string) (string, error) {
	return "", errors.New(errors.ErrAI, "generation unavailable", ErrDisabled)
}

// NewClient returns a Gemini client, or a client that always fails when no key is configured.
func NewClient(ctx context.Context, cfg config.AIConfig, dimensions int32) (Client, error) {
	if !cfg.Enabled() {
		return disabledClient{}, nil
	}
	return NewGeminiClient(ctx, cfg, dimensions)
}
