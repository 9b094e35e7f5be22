// File: internal/infra/templates/embeddings.go
package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EmbeddingsClient talks to an OpenAI-compatible /embeddings endpoint.
// Base URL defaults to Zhipu's gateway with the embedding-2 model, the
// same account the chat adapter uses.
type EmbeddingsClient struct {
	apiKey string
	base   string // e.g., https://open.bigmodel.cn/api/paas/v4
	model  string
	client *http.Client
}

func NewEmbeddingsClient(apiKey, base, model string) (*EmbeddingsClient, error) {
	if apiKey == "" {
		return nil, errors.New("embeddings api key empty")
	}
	if base == "" {
		base = "https://open.bigmodel.cn/api/paas/v4"
	}
	if model == "" {
		model = "embedding-2"
	}
	return &EmbeddingsClient{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Embed returns one vector per input text, in input order.
func (e *EmbeddingsClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	reqBody := struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{Model: e.model, Input: texts}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, e.base+"/embeddings", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings http %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(payload.Data), len(texts))
	}
	out := make([][]float64, len(texts))
	for _, d := range payload.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
