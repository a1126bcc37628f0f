package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Ranker orders candidate chunks by relevance to a query.
//
// Candidates arrive in store insertion order. Rank must be stable: chunks
// with equal scores keep their relative order. Chunks judged irrelevant
// are dropped. The result has at most topK entries.
type Ranker interface {
	// Name returns the ranker identifier for logging.
	Name() string

	// Rank returns the most relevant candidates, best first.
	Rank(ctx context.Context, query string, candidates []domain.Chunk, topK int) ([]domain.Chunk, error)
}
