package provider

import (
	"context"
	"errors"

	"github.com/clipsearch/clipsearch/config"
	openai_provider "github.com/clipsearch/clipsearch/provider/openai"
)

// Embedder turns text into semantic vectors.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder creates the configured embedding client.
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding.api_key not set")
	}
	return openai_provider.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions, cfg.Timeout), nil
}
