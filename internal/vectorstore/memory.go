package vectorstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-memory embedding cache.
// Used when the SQLite cache cannot be opened; nothing survives the process.
type MemoryStore struct {
	vectors map[string][]float32
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vectors: make(map[string][]float32),
	}
}

// Get returns a copy of the stored vector
func (m *MemoryStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vector, ok := m.vectors[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(vector), true, nil
}

// Put stores a copy of the vector
func (m *MemoryStore) Put(ctx context.Context, key string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors[key] = slices.Clone(vector)
	return nil
}

// Clear removes all vectors
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors = make(map[string][]float32)
	return nil
}

// Count returns the number of stored vectors
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
