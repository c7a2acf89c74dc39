// Package vectorindex adapts an optional external managed vector index. When
// the index is not configured the no-op implementation keeps callers on the
// local similarity ranker; absence of configuration is a normal state, never
// an error.
package vectorindex

import (
	"context"

	"github.com/formforge/formforge-backend/config"
)

// Metadata is attached to upserted vectors for later inspection in the index
type Metadata struct {
	OwnerID string   `json:"userId"`
	Title   string   `json:"title,omitempty"`
	Purpose string   `json:"purpose,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Match is a single query hit
type Match struct {
	ID    string
	Score float64
}

// Index is the contract with the external vector index
type Index interface {
	// Upsert stores a vector under id, scoped to ownerID. Fire-and-forget:
	// callers log failures and move on.
	Upsert(ctx context.Context, id, ownerID string, vector []float64, metadata Metadata) error
	// Query returns up to topK matches among ownerID's vectors. An empty
	// result makes callers fall back to local ranking.
	Query(ctx context.Context, ownerID string, vector []float64, topK int) ([]Match, error)
}

// NewFromConfig returns the Pinecone-backed index when the memory feature flag
// and credentials are all present, and the no-op index otherwise
func NewFromConfig(memory config.MemoryConfig, pinecone config.PineconeConfig) Index {
	if !memory.UsePinecone || pinecone.APIKey == "" || pinecone.IndexHost == "" {
		return NewNoopIndex()
	}
	return NewPineconeIndex(pinecone)
}

// NoopIndex is the disabled state of the adapter: Upsert does nothing and
// Query matches nothing
type NoopIndex struct{}

// NewNoopIndex creates a disabled vector index
func NewNoopIndex() *NoopIndex {
	return &NoopIndex{}
}

// Upsert does nothing
func (n *NoopIndex) Upsert(ctx context.Context, id, ownerID string, vector []float64, metadata Metadata) error {
	return nil
}

// Query returns no matches
func (n *NoopIndex) Query(ctx context.Context, ownerID string, vector []float64, topK int) ([]Match, error) {
	return nil, nil
}
