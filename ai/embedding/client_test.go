package embedding

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

func TestClientEmbed(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float64{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "text-embedding-3-small",
	})

	vector, err := client.Embed(context.Background(), "feedback form")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "feedback form", gotBody["input"])
	assert.Equal(t, "text-embedding-3-small", gotBody["model"])
}

func TestClientEmbedEmptyInputSkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called for empty input")
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{APIKey: "sk-test", BaseURL: server.URL})

	vector, err := client.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, vector)
}

func TestClientEmbedErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "empty data array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(config.EmbeddingConfig{APIKey: "sk-test", BaseURL: server.URL})

			_, err := client.Embed(context.Background(), "anything")
			assert.Error(t, err)
		})
	}
}

func TestNewFromConfigSelectsEmbedder(t *testing.T) {
	local := NewFromConfig(config.EmbeddingConfig{})
	assert.IsType(t, &LocalEmbedder{}, local)

	remote := NewFromConfig(config.EmbeddingConfig{APIKey: "sk-test"})
	assert.IsType(t, &Client{}, remote)
}
