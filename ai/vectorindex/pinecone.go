package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/formforge/formforge-backend/config"
)

// PineconeIndex is a minimal REST client to a Pinecone serverless index.
// Vectors are scoped per owner through a metadata filter rather than
// per-owner namespaces.
type PineconeIndex struct {
	host   string
	apiKey string
	client *http.Client
}

// NewPineconeIndex creates a new Pinecone index client
func NewPineconeIndex(cfg config.PineconeConfig) *PineconeIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &PineconeIndex{
		host:   cfg.IndexHost,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Upsert stores the vector with its metadata
func (p *PineconeIndex) Upsert(ctx context.Context, id, ownerID string, vector []float64, metadata Metadata) error {
	metadata.OwnerID = ownerID
	body := map[string]interface{}{
		"vectors": []map[string]interface{}{
			{
				"id":       id,
				"values":   vector,
				"metadata": metadata,
			},
		},
	}
	return p.postJSON(ctx, p.host+"/vectors/upsert", body, nil)
}

// Query returns up to topK of ownerID's vectors closest to vector
func (p *PineconeIndex) Query(ctx context.Context, ownerID string, vector []float64, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]interface{}{
		"vector": vector,
		"topK":   topK,
		"filter": map[string]interface{}{
			"userId": map[string]interface{}{"$eq": ownerID},
		},
	}
	var resp struct {
		Matches []struct {
			ID    string  `json:"id"`
			Score float64 `json:"score"`
		} `json:"matches"`
	}
	if err := p.postJSON(ctx, p.host+"/query", body, &resp); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{ID: m.ID, Score: m.Score})
	}
	return matches, nil
}

func (p *PineconeIndex) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
