package embedding

import (
	"context"
	"math"
	"strings"
)

// LocalDimension is the vector length produced by the local embedder
const LocalDimension = 64

// LocalEmbedder produces a deterministic pseudo-embedding with no network
// access. The vectors carry no semantic meaning; they exist so that the
// retrieval pipeline behaves reproducibly in development and tests.
type LocalEmbedder struct{}

// NewLocalEmbedder creates a new deterministic embedder
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

// Embed maps each index i to (sin(code+i)+1)*0.5 where code is the character
// at position i mod len(text). Empty or whitespace-only input yields an empty
// vector.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return []float64{}, nil
	}
	runes := []rune(text)
	vector := make([]float64, LocalDimension)
	for i := range vector {
		code := float64(runes[i%len(runes)])
		vector[i] = (math.Sin(code+float64(i)) + 1) * 0.5
	}
	return vector, nil
}
