// Package embedding converts text into fixed-length numeric vectors. A remote
// OpenAI-compatible provider is used when an API key is configured; otherwise
// a deterministic local embedder keeps the memory pipeline fully functional
// offline.
package embedding

import (
	"context"

	"github.com/formforge/formforge-backend/config"
)

// Embedder converts free text into a numeric vector representation.
// Implementations return an empty vector, not an error, for empty or
// whitespace-only input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// NewFromConfig selects the provider-backed embedder when an API key is
// configured and the deterministic local embedder otherwise
func NewFromConfig(cfg config.EmbeddingConfig) Embedder {
	if cfg.APIKey == "" {
		return NewLocalEmbedder()
	}
	return NewClient(cfg)
}
