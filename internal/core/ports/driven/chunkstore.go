package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChunkStore is a content-addressed collection of chunks.
// Chunks are keyed by ContentHash; a hash is stored at most once.
//
// Implementations must be safe for concurrent use. Readers observe
// either the state before or after any AddChunk, never a partial chunk.
type ChunkStore interface {
	// Contains reports whether a chunk with the given hash is stored.
	Contains(ctx context.Context, hash string) (bool, error)

	// AddChunk stores the chunk under its ContentHash.
	// The check-and-insert is atomic. If the hash already exists the
	// call is a no-op and returns added=false with a nil error.
	// A chunk with an empty ContentHash yields a *domain.StoreError.
	AddChunk(ctx context.Context, chunk domain.Chunk) (added bool, err error)

	// SimilaritySearch returns at most topK chunks, most relevant first.
	// Ties are broken by insertion order so repeated calls on an
	// unmodified store return identical results. An empty store, no
	// match, or topK <= 0 yields an empty slice and a nil error.
	SimilaritySearch(ctx context.Context, query string, topK int) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
