package rag

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	errx "github.com/pollenai/assistant/internal/core/error"
)

// Embedder produces vector embeddings for text and reports dimension.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
	Dimensions() int
}

// GeminiEmbedder embeds text through the same genai client the chat models use.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

func NewGeminiEmbedder(client *genai.Client, model string, dims int) (*GeminiEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini embedder: client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini embedder: model is required")
	}
	if dims <= 0 {
		return nil, fmt.Errorf("gemini embedder: dimensions must be positive")
	}
	return &GeminiEmbedder{client: client, model: model, dims: dims}, nil
}

func (e *GeminiEmbedder) Dimensions() int {
	return e.dims
}

func (e *GeminiEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	dims := int32(e.dims)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(input), &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, errx.UpstreamUnavailable("embedding model", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errx.UpstreamUnavailable("embedding model", fmt.Errorf("empty embedding response"))
	}
	return resp.Embeddings[0].Values, nil
}

var _ Embedder = (*GeminiEmbedder)(nil)
