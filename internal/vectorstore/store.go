// Package vectorstore caches description embeddings across runs so an
// unchanged catalog does not hit the embedding provider again.
package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores embedding vectors by content key
type Cache interface {
	// Get returns the vector stored under key and whether it was found
	Get(ctx context.Context, key string) ([]float32, bool, error)

	// Put stores a vector, replacing any previous value
	Put(ctx context.Context, key string, vector []float32) error

	// Clear removes all vectors
	Clear(ctx context.Context) error

	// Count returns the number of stored vectors
	Count() int
}

// Key derives the cache key for a text
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
