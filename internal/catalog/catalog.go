// Package catalog holds the ranking-eligible items and builds them from raw
// input by embedding every description.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/vectorstore"
)

// DefaultWorkers bounds concurrent embedding calls during Build
const DefaultWorkers = 4

// ErrDimensionMismatch is returned when two vectors that must share a size do not
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Input is a raw item record before embedding
type Input struct {
	Name        string   `yaml:"name" toml:"name" json:"name"`
	Description string   `yaml:"description" toml:"description" json:"description"`
	Tags        []string `yaml:"tags" toml:"tags" json:"tags"`
}

// Item is a catalog entry with its embedding.
// Embedding is shared with the catalog and must not be modified.
type Item struct {
	Name        string
	Description string
	Tags        []string
	Embedding   []float32
}

// Skipped describes an input dropped during Build
type Skipped struct {
	Index int
	Name  string
	Err   error
}

// Catalog is an ordered, immutable set of embedded items of one dimensionality
type Catalog struct {
	items []Item
	dims  int
}

// New creates a catalog from already embedded items. All items must carry
// embeddings of the same non-zero size.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{items: make([]Item, 0, len(items))}
	for i, item := range items {
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("item %d (%s) has no embedding", i, item.Name)
		}
		if c.dims == 0 {
			c.dims = len(item.Embedding)
		} else if len(item.Embedding) != c.dims {
			return nil, fmt.Errorf("item %d (%s): %w: got %d, want %d", i, item.Name, ErrDimensionMismatch, len(item.Embedding), c.dims)
		}
		item.Tags = slices.Clone(item.Tags)
		item.Embedding = slices.Clone(item.Embedding)
		c.items = append(c.items, item)
	}
	return c, nil
}

type buildOptions struct {
	workers int
	cache   vectorstore.Cache
}

// Option configures Build
type Option func(*buildOptions)

// WithWorkers bounds the number of concurrent embedding calls
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithCache reuses previously computed description embeddings
func WithCache(cache vectorstore.Cache) Option {
	return func(o *buildOptions) {
		o.cache = cache
	}
}

// Build embeds every input description and returns the catalog of items that
// embedded successfully, in input order, plus the inputs that were dropped.
// Embedding failures never fail the build.
func Build(ctx context.Context, embedder embeddings.Embedder, inputs []Input, opts ...Option) (*Catalog, []Skipped) {
	o := buildOptions{workers: DefaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}

	vectors := make([][]float32, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, in := range inputs {
		g.Go(func() error {
			vectors[i], errs[i] = embedDescription(ctx, embedder, o.cache, in.Description)
			return nil
		})
	}
	g.Wait()

	c := &Catalog{items: make([]Item, 0, len(inputs))}
	var skipped []Skipped
	for i, in := range inputs {
		err := errs[i]
		if err == nil && c.dims != 0 && len(vectors[i]) != c.dims {
			err = fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vectors[i]), c.dims)
		}
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Name: in.Name, Err: err})
			continue
		}
		if c.dims == 0 {
			c.dims = len(vectors[i])
		}
		c.items = append(c.items, Item{
			Name:        in.Name,
			Description: in.Description,
			Tags:        slices.Clone(in.Tags),
			Embedding:   vectors[i],
		})
	}

	return c, skipped
}

// embedDescription prefers a cached vector; cache errors fall through to the provider
func embedDescription(ctx context.Context, embedder embeddings.Embedder, cache vectorstore.Cache, text string) ([]float32, error) {
	var key string
	if cache != nil {
		key = vectorstore.Key(text)
		if vec, ok, err := cache.Get(ctx, key); err == nil && ok {
			return vec, nil
		}
	}

	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", embeddings.ErrEmbedding)
	}

	if cache != nil {
		// a failed write only costs a provider call next run
		_ = cache.Put(ctx, key, vec)
	}
	return vec, nil
}

// Len returns the number of items
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Dimensions returns the shared embedding size, 0 for an empty catalog
func (c *Catalog) Dimensions() int {
	if c == nil {
		return 0
	}
	return c.dims
}

// At returns a copy of the i-th item in insertion order
func (c *Catalog) At(i int) Item {
	item := c.items[i]
	item.Tags = slices.Clone(item.Tags)
	item.Embedding = slices.Clone(item.Embedding)
	return item
}

// Scores applies score to every embedding in insertion order.
// score must not modify or retain the slice it is given.
func (c *Catalog) Scores(score func(embedding []float32) float64) []float64 {
	if c == nil {
		return nil
	}
	out := make([]float64, len(c.items))
	for i, item := range c.items {
		out[i] = score(item.Embedding)
	}
	return out
}

// Items returns a deep copy of all items
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	items := make([]Item, len(c.items))
	for i, item := range c.items {
		item.Tags = slices.Clone(item.Tags)
		item.Embedding = slices.Clone(item.Embedding)
		items[i] = item
	}
	return items
}
