// Package rank scores catalog items against a query vector by cosine
// similarity and returns them best first.
package rank

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/iishyfishyy/vibematch/internal/catalog"
)

var (
	// ErrDimensionMismatch is returned when the query and catalog vectors differ in size
	ErrDimensionMismatch = catalog.ErrDimensionMismatch

	// ErrInvalidTopK is returned for topK < 1
	ErrInvalidTopK = errors.New("topK must be at least 1")
)

// Scored is a copy of a catalog item with its similarity to the query
type Scored struct {
	Item  catalog.Item
	Score float64
}

// Rank scores every item in c against query and returns the topK best,
// descending by score. Equal scores keep catalog order. topK larger than
// the catalog returns every item.
func Rank(query []float32, c *catalog.Catalog, topK int) ([]Scored, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if c.Len() == 0 {
		return []Scored{}, nil
	}
	if len(query) != c.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, catalog has %d", ErrDimensionMismatch, len(query), c.Dimensions())
	}

	qNorm := norm(query)
	scores := c.Scores(func(embedding []float32) float64 {
		return cosine(query, embedding, qNorm)
	})

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		default:
			return 0
		}
	})

	order = order[:min(topK, len(order))]
	scored := make([]Scored, len(order))
	for i, idx := range order {
		scored[i] = Scored{Item: c.At(idx), Score: scores[idx]}
	}
	return scored, nil
}

// CosineSimilarity returns dot(a, b) / (|a| |b|) in [-1, 1].
// Zero-magnitude or mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return cosine(a, b, norm(a))
}

// cosine accumulates in float64 throughout so every score in a call shares one precision
func cosine(a, b []float32, aNorm float64) float64 {
	var dot, bSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bSq += float64(b[i]) * float64(b[i])
	}

	bNorm := math.Sqrt(bSq)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}

	score := dot / (aNorm * bNorm)
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

func norm(v []float32) float64 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	return math.Sqrt(sq)
}
