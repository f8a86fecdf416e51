// Package testutil holds test doubles shared across package tests
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/iishyfishyy/vibematch/internal/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text is a key
	FailOn map[string]bool

	// Default is returned for texts missing from Embeddings
	Default []float32

	mu    sync.Mutex
	calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		FailOn:     make(map[string]bool),
		Default:    []float32{0.1, 0.2, 0.3},
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", embeddings.ErrEmbedding, err)
	}

	if m.FailOn[text] {
		return nil, fmt.Errorf("%w: mock embedding failure for: %s", embeddings.ErrEmbedding, text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return m.Default, nil
}

func (m *MockEmbedder) Dimensions() int {
	return len(m.Default)
}

func (m *MockEmbedder) Name() string {
	return "mock/test"
}

// Calls returns the texts Embed was called with, in call order
func (m *MockEmbedder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}
