// Package semantic ranks chunks by cosine similarity of their embeddings.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking"
)

// Default cache lifetimes for chunk embeddings.
const (
	DefaultCacheTTL        = 24 * time.Hour
	DefaultCleanupInterval = 30 * time.Minute
)

var _ driven.Ranker = (*Ranker)(nil)

// Ranker embeds the query and every candidate and keeps those whose
// cosine similarity reaches the minimum. Chunk embeddings are cached by
// content hash, so a chunk is embedded once per cache lifetime.
type Ranker struct {
	embedder      driven.EmbeddingService
	cache         *cache.Cache
	minSimilarity float64
}

// Option configures the semantic ranker.
type Option func(*Ranker)

// WithMinSimilarity sets the similarity cut-off.
func WithMinSimilarity(v float64) Option {
	return func(r *Ranker) {
		r.minSimilarity = v
	}
}

// WithCache replaces the embedding cache.
func WithCache(c *cache.Cache) Option {
	return func(r *Ranker) {
		r.cache = c
	}
}

// New creates a semantic ranker. Returns domain.ErrEmbeddingUnavailable
// when embedder is nil.
func New(embedder driven.EmbeddingService, opts ...Option) (*Ranker, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	r := &Ranker{
		embedder:      embedder,
		cache:         cache.New(DefaultCacheTTL, DefaultCleanupInterval),
		minSimilarity: domain.DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name returns the ranker identifier.
func (r *Ranker) Name() string {
	return string(domain.RankerSemantic)
}

// Rank returns up to topK candidates most similar to the query.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []domain.Chunk, topK int) ([]domain.Chunk, error) {
	if topK <= 0 || len(candidates) == 0 {
		return []domain.Chunk{}, nil
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vectors, err := r.chunkVectors(ctx, candidates)
	if err != nil {
		return nil, err
	}

	scored := make([]ranking.Scored, 0, len(candidates))
	for i, c := range candidates {
		sim := Cosine(qvec, vectors[i])
		if sim < r.minSimilarity {
			continue
		}
		scored = append(scored, ranking.Scored{Chunk: c, Score: sim})
	}
	return ranking.Top(scored, topK), nil
}

// chunkVectors returns one embedding per candidate, embedding cache misses in a single batch.
func (r *Ranker) chunkVectors(ctx context.Context, candidates []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(candidates))
	var missTexts []string
	var missIdx []int

	for i, c := range candidates {
		if v, ok := r.cache.Get(c.ContentHash); ok && c.ContentHash != "" {
			vectors[i] = v.([]float32)
			continue
		}
		missTexts = append(missTexts, c.Text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := r.embedder.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embedded) != len(missTexts) {
		return nil, errors.New("embed chunks: result count mismatch")
	}
	for j, i := range missIdx {
		vectors[i] = embedded[j]
		if hash := candidates[i].ContentHash; hash != "" {
			r.cache.SetDefault(hash, embedded[j])
		}
	}
	return vectors, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is zero
// or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
