package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// OllamaBaseURL is where a local Ollama listens by default
	OllamaBaseURL = "http://localhost:11434"

	// DefaultOllamaModel is used when no model is configured
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaEmbedder implements Embedder using Ollama's local API
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
	dims    dimensionGuard
}

// NewOllamaEmbedder creates a new Ollama embedder.
// Unlike the hosted providers no API key is needed; connectivity is checked by Ping.
func NewOllamaEmbedder(baseURL, model string, dims int) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	o := &OllamaEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	if dims > 0 {
		o.dims.dims.Store(int64(dims))
	}

	return o, nil
}

// Ping checks that Ollama is running
func (o *OllamaEmbedder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not running at %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return nil
}

// Embed generates an embedding for a single text
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]interface{}{
		"model":  o.model,
		"prompt": text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/embeddings",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", ErrEmbedding, resp.StatusCode, errResp.Error)
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrEmbedding, err)
	}

	if err := o.dims.check(len(result.Embedding)); err != nil {
		return nil, err
	}

	return result.Embedding, nil
}

// Dimensions returns the embedding dimension size
func (o *OllamaEmbedder) Dimensions() int {
	return o.dims.get()
}

// Name returns the model name
func (o *OllamaEmbedder) Name() string {
	return fmt.Sprintf("ollama/%s", o.model)
}
