package retrieval

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultEmbeddingModel = openai.SmallEmbedding3

// OpenAIEmbedder embeds texts with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder creates an embedder. An empty model selects
// text-embedding-3-small.
func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	m := defaultEmbeddingModel
	if model != "" {
		m = openai.EmbeddingModel(model)
	}

	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: m}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
