package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge-backend/config"
)

func TestPineconeUpsert(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewPineconeIndex(config.PineconeConfig{APIKey: "key-123", IndexHost: server.URL})

	err := index.Upsert(context.Background(), "form_1", "usr_1", []float64{0.5, 0.5}, Metadata{Title: "Feedback"})
	require.NoError(t, err)

	vectors := gotBody["vectors"].([]interface{})
	require.Len(t, vectors, 1)
	vector := vectors[0].(map[string]interface{})
	assert.Equal(t, "form_1", vector["id"])

	// Owner scoping is always applied to the stored metadata
	metadata := vector["metadata"].(map[string]interface{})
	assert.Equal(t, "usr_1", metadata["userId"])
	assert.Equal(t, "Feedback", metadata["title"])
}

func TestPineconeQuery(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []map[string]interface{}{
				{"id": "form_a", "score": 0.92},
				{"id": "form_b", "score": 0.71},
			},
		})
	}))
	defer server.Close()

	index := NewPineconeIndex(config.PineconeConfig{APIKey: "key-123", IndexHost: server.URL})

	matches, err := index.Query(context.Background(), "usr_1", []float64{0.5, 0.5}, 2)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, Match{ID: "form_a", Score: 0.92}, matches[0])

	assert.Equal(t, float64(2), gotBody["topK"])
	filter := gotBody["filter"].(map[string]interface{})
	userFilter := filter["userId"].(map[string]interface{})
	assert.Equal(t, "usr_1", userFilter["$eq"])
}

func TestPineconeQueryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	index := NewPineconeIndex(config.PineconeConfig{APIKey: "key-123", IndexHost: server.URL})

	_, err := index.Query(context.Background(), "usr_1", []float64{0.5}, 5)
	assert.Error(t, err)
}

func TestNewFromConfigFallsBackToNoop(t *testing.T) {
	tests := []struct {
		name     string
		memory   config.MemoryConfig
		pinecone config.PineconeConfig
	}{
		{name: "feature flag off", memory: config.MemoryConfig{}, pinecone: config.PineconeConfig{APIKey: "k", IndexHost: "h"}},
		{name: "missing key", memory: config.MemoryConfig{UsePinecone: true}, pinecone: config.PineconeConfig{IndexHost: "h"}},
		{name: "missing host", memory: config.MemoryConfig{UsePinecone: true}, pinecone: config.PineconeConfig{APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := NewFromConfig(tt.memory, tt.pinecone)
			assert.IsType(t, &NoopIndex{}, index)
		})
	}

	index := NewFromConfig(config.MemoryConfig{UsePinecone: true}, config.PineconeConfig{APIKey: "k", IndexHost: "h"})
	assert.IsType(t, &PineconeIndex{}, index)
}

func TestNoopIndex(t *testing.T) {
	index := NewNoopIndex()

	assert.NoError(t, index.Upsert(context.Background(), "id", "owner", []float64{1}, Metadata{}))

	matches, err := index.Query(context.Background(), "owner", []float64{1}, 5)
	assert.NoError(t, err)
	assert.Nil(t, matches)
}
