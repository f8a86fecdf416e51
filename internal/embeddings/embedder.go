package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrEmbedding is returned (wrapped) whenever a provider call does not produce a vector
var ErrEmbedding = errors.New("embedding failed")

// Provider names accepted by NewEmbedder
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Embedder generates vector embeddings for text
type Embedder interface {
	// Embed generates an embedding vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the size of the embedding vectors, or 0 if not yet known
	Dimensions() int

	// Name returns the name/model of this embedder
	Name() string
}

// Config holds configuration for creating an embedder
type Config struct {
	Provider string

	// BaseURL overrides the provider's default endpoint
	BaseURL string
	Model   string
	APIKey  string

	// Dimensions asks OpenAI-compatible providers for shortened vectors and
	// pins the expected size. Zero means the model's native size, learned from
	// the first response (or the known model table). Not supported by ollama.
	Dimensions int
}

// NewEmbedder creates an embedder based on the config
func NewEmbedder(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.APIKey, cfg.Model, WithBaseURL(cfg.BaseURL), WithDimensions(cfg.Dimensions))
	case ProviderOpenRouter:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = OpenRouterBaseURL
		}
		return NewOpenAIEmbedder(cfg.APIKey, cfg.Model, WithBaseURL(baseURL), WithDimensions(cfg.Dimensions), withProvider(ProviderOpenRouter))
	case ProviderOllama:
		if cfg.Dimensions > 0 {
			return nil, fmt.Errorf("ollama returns the model's native vector size; unset embedding dimensions")
		}
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model, 0)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}

// RequiresAPIKey reports whether the provider authenticates with an API key
func RequiresAPIKey(provider string) bool {
	return provider == ProviderOpenAI || provider == ProviderOpenRouter
}

// dimensionGuard pins the vector size of a client to the first value it sees
type dimensionGuard struct {
	dims atomic.Int64
}

func (g *dimensionGuard) check(got int) error {
	if got == 0 {
		return fmt.Errorf("%w: empty embedding returned", ErrEmbedding)
	}
	if g.dims.CompareAndSwap(0, int64(got)) {
		return nil
	}
	if want := g.dims.Load(); want != int64(got) {
		return fmt.Errorf("%w: malformed response: got %d dimensions, want %d", ErrEmbedding, got, want)
	}
	return nil
}

func (g *dimensionGuard) get() int {
	return int(g.dims.Load())
}
