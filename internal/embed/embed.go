// Package embed turns question text into dense vectors for
// similarity-based recommendation.
package embed

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder produces a vector representation of text. Implementations
// must return an error rather than a zero or truncated vector when the
// backend fails: recommendation quality degrades silently otherwise.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds embedding backend settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig returns the default embedding configuration.
func DefaultConfig() Config {
	return Config{
		Model: string(openai.SmallEmbedding3),
	}
}

// ConfigFromEnv loads embedding configuration from SQLDRILL_EMBED_*
// variables, falling back to the OpenAI chat key so one key can serve
// both.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SQLDRILL_EMBED_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv("SQLDRILL_OPENAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("SQLDRILL_EMBED_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SQLDRILL_EMBED_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("embedding API key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding model is required")
	}
	return nil
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}
