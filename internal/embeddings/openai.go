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
	// OpenAIBaseURL is the default OpenAI API endpoint
	OpenAIBaseURL = "https://api.openai.com/v1"

	// OpenRouterBaseURL serves the OpenAI embeddings wire format for many models
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultOpenAIModel is used when no model is configured
	DefaultOpenAIModel = "text-embedding-3-small"
)

// knownOpenAIDims maps models to their native vector size
var knownOpenAIDims = map[string]int{
	"text-embedding-3-small":        1536,
	"text-embedding-3-large":        3072,
	"text-embedding-ada-002":        1536,
	"openai/text-embedding-3-small": 1536,
	"openai/text-embedding-3-large": 3072,
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
// Any OpenAI-compatible endpoint (OpenRouter included) works through WithBaseURL.
type OpenAIEmbedder struct {
	apiKey   string
	model    string
	baseURL  string
	provider string
	client   *http.Client
	dims     dimensionGuard

	// requestDims asks the provider to shorten vectors; 0 keeps the native size
	requestDims int
}

// OpenAIOption configures an OpenAIEmbedder
type OpenAIOption func(*OpenAIEmbedder)

// WithBaseURL points the embedder at another OpenAI-compatible endpoint
func WithBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAIEmbedder) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithDimensions requests vectors of the given size (text-embedding-3 models)
// and pins the expected size to it
func WithDimensions(dims int) OpenAIOption {
	return func(o *OpenAIEmbedder) {
		if dims > 0 {
			o.requestDims = dims
			o.dims.dims.Store(int64(dims))
		}
	}
}

// WithHTTPClient replaces the default client (30s timeout)
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAIEmbedder) {
		if client != nil {
			o.client = client
		}
	}
}

func withProvider(provider string) OpenAIOption {
	return func(o *OpenAIEmbedder) {
		o.provider = provider
	}
}

// NewOpenAIEmbedder creates a new OpenAI embedder
func NewOpenAIEmbedder(apiKey, model string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = DefaultOpenAIModel
	}

	o := &OpenAIEmbedder{
		apiKey:   apiKey,
		model:    model,
		baseURL:  OpenAIBaseURL,
		provider: ProviderOpenAI,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	if dims, ok := knownOpenAIDims[model]; ok {
		o.dims.dims.Store(int64(dims))
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Embed generates an embedding for a single text
func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]interface{}{
		"model": o.model,
		"input": text,
	}
	if o.requestDims > 0 {
		reqBody["dimensions"] = o.requestDims
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/embeddings",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("%w: %s API error (status %d): %s", ErrEmbedding, o.provider, resp.StatusCode, errResp.Error.Message)
	}

	// OpenRouter reports some upstream failures with a 200 and an error body
	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrEmbedding, err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s API error: %s", ErrEmbedding, o.provider, result.Error.Message)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbedding)
	}

	if err := o.dims.check(len(result.Data[0].Embedding)); err != nil {
		return nil, err
	}

	return result.Data[0].Embedding, nil
}

// Ping verifies the key and model with a one-word embedding request
func (o *OpenAIEmbedder) Ping(ctx context.Context) error {
	_, err := o.Embed(ctx, "ping")
	return err
}

// Dimensions returns the embedding dimension size
func (o *OpenAIEmbedder) Dimensions() int {
	return o.dims.get()
}

// Name returns the model name, suffixed with the requested size when one is set
func (o *OpenAIEmbedder) Name() string {
	if o.requestDims > 0 {
		return fmt.Sprintf("%s/%s@%d", o.provider, o.model, o.requestDims)
	}
	return fmt.Sprintf("%s/%s", o.provider, o.model)
}
