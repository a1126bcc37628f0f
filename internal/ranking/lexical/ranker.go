// Package lexical ranks chunks by token overlap with the query.
package lexical

import (
	"context"
	"math"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking"
)

var _ driven.Ranker = (*Ranker)(nil)

// Ranker scores chunks with the Ochiai coefficient over their
// distinct non-stopword tokens: |Q ∩ C| / sqrt(|Q| * |C|).
// Chunks sharing no token with the query are not returned.
type Ranker struct {
	stopwords map[string]struct{}
}

// Option configures the lexical ranker.
type Option func(*Ranker)

// WithStopwords replaces the default English stopword list.
func WithStopwords(words []string) Option {
	return func(r *Ranker) {
		r.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			r.stopwords[w] = struct{}{}
		}
	}
}

// New creates a lexical ranker.
func New(opts ...Option) *Ranker {
	r := &Ranker{stopwords: ranking.EnglishStopwords()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the ranker identifier.
func (r *Ranker) Name() string {
	return string(domain.RankerLexical)
}

// Rank returns up to topK candidates with the highest overlap.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []domain.Chunk, topK int) ([]domain.Chunk, error) {
	qset := ranking.TokenSet(query, r.stopwords)
	if len(qset) == 0 || topK <= 0 {
		return []domain.Chunk{}, nil
	}

	scored := make([]ranking.Scored, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scored = append(scored, ranking.Scored{Chunk: c, Score: r.score(qset, c.Text)})
	}
	return ranking.Top(scored, topK), nil
}

// Score returns the Ochiai coefficient between query and text.
func (r *Ranker) Score(query, text string) float64 {
	return r.score(ranking.TokenSet(query, r.stopwords), text)
}

func (r *Ranker) score(qset map[string]struct{}, text string) float64 {
	cset := ranking.TokenSet(text, r.stopwords)
	if len(qset) == 0 || len(cset) == 0 {
		return 0
	}
	inter := 0
	for t := range cset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(cset)))
}
