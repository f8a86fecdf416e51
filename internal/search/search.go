// Package search answers vibe queries: it embeds the query text, ranks the
// catalog against it and times the whole operation.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iishyfishyy/vibematch/internal/catalog"
	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/rank"
)

// DefaultTopK is used when Search is called with topK <= 0
const DefaultTopK = 3

// ErrEmbeddingFailed is returned when the query itself cannot be embedded
var ErrEmbeddingFailed = errors.New("query embedding failed")

// Match is one ranked item, copied out of the catalog
type Match struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// QueryResult is the answer to one query
type QueryResult struct {
	ID      string        `json:"id"`
	Query   string        `json:"query"`
	Matches []Match       `json:"matches"`
	Elapsed time.Duration `json:"elapsed"`
}

// ElapsedSeconds returns the embed+rank duration in seconds
func (r *QueryResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Top returns the best match, if any
func (r *QueryResult) Top() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// Service runs queries against one built catalog.
// It is safe for concurrent use; the catalog is never modified.
type Service struct {
	embedder embeddings.Embedder
	catalog  *catalog.Catalog
	timeout  time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithTimeout bounds each query embedding call
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a search service over an already built catalog
func NewService(embedder embeddings.Embedder, c *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		embedder: embedder,
		catalog:  c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog queries are ranked against
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Search embeds query and returns the topK most similar catalog items.
// A failed query embedding fails the whole search with ErrEmbeddingFailed.
func (s *Service) Search(ctx context.Context, query string, topK int) (*QueryResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	start := time.Now()

	queryEmbed, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrEmbeddingFailed, query, err)
	}

	ranked, err := rank.Rank(queryEmbed, s.catalog, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to rank %q: %w", query, err)
	}

	elapsed := time.Since(start)

	matches := make([]Match, len(ranked))
	for i, r := range ranked {
		matches[i] = Match{
			Name:        r.Item.Name,
			Description: r.Item.Description,
			Score:       r.Score,
		}
	}

	return &QueryResult{
		ID:      uuid.NewString(),
		Query:   query,
		Matches: matches,
		Elapsed: elapsed,
	}, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", embeddings.ErrEmbedding)
	}
	return vec, nil
}
