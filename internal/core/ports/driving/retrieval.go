package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService assembles grounding context for a query.
type RetrievalService interface {
	// Retrieve returns the configured top-k chunks joined into one block.
	// When nothing matches, Text is domain.NoRelevantInformation and Found is false.
	Retrieve(ctx context.Context, query string) (domain.RetrievalContext, error)

	// Search returns at most topK ranked chunks.
	Search(ctx context.Context, query string, topK int) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
