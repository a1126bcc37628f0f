// Package substring ranks chunks by case-insensitive containment of the query.
package substring

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking"
)

var _ driven.Ranker = (*Ranker)(nil)

// Ranker keeps chunks whose text contains the whole query.
// All matches score equally, so results follow insertion order.
type Ranker struct{}

// New creates a substring ranker.
func New() *Ranker {
	return &Ranker{}
}

// Name returns the ranker identifier.
func (r *Ranker) Name() string {
	return string(domain.RankerSubstring)
}

// Rank returns the first topK candidates containing query.
func (r *Ranker) Rank(_ context.Context, query string, candidates []domain.Chunk, topK int) ([]domain.Chunk, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []domain.Chunk{}, nil
	}

	scored := make([]ranking.Scored, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			scored = append(scored, ranking.Scored{Chunk: c, Score: 1})
		}
	}
	return ranking.Top(scored, topK), nil
}
