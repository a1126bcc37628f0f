// Package memory provides an in-memory chunk store.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking/lexical"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks live in a hash-keyed map; order records insertion for tie-breaking.
type ChunkStore struct {
	mu     sync.RWMutex
	ranker driven.Ranker
	chunks map[string]domain.Chunk
	order  []string
}

// NewChunkStore creates a new in-memory chunk store.
// A nil ranker selects the lexical ranker.
func NewChunkStore(ranker driven.Ranker) *ChunkStore {
	if ranker == nil {
		ranker = lexical.New()
	}
	return &ChunkStore{
		ranker: ranker,
		chunks: make(map[string]domain.Chunk),
	}
}

// Contains reports whether a chunk with the given hash is stored.
func (s *ChunkStore) Contains(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[hash]
	return ok, nil
}

// AddChunk stores the chunk unless its hash is already present.
func (s *ChunkStore) AddChunk(_ context.Context, chunk domain.Chunk) (bool, error) {
	if chunk.ContentHash == "" {
		return false, &domain.StoreError{Op: "add", Err: domain.ErrStoreInvariant}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[chunk.ContentHash]; ok {
		return false, nil
	}
	s.chunks[chunk.ContentHash] = chunk
	s.order = append(s.order, chunk.ContentHash)
	return true, nil
}

// SimilaritySearch ranks a snapshot of the stored chunks against query.
func (s *ChunkStore) SimilaritySearch(ctx context.Context, query string, topK int) ([]domain.Chunk, error) {
	if topK <= 0 {
		return []domain.Chunk{}, nil
	}
	candidates := s.snapshot()
	if len(candidates) == 0 {
		return []domain.Chunk{}, nil
	}
	return s.ranker.Rank(ctx, query, candidates, topK)
}

// Count returns the number of stored chunks.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}

// snapshot copies the chunks in insertion order.
func (s *ChunkStore) snapshot() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(s.order))
	for _, hash := range s.order {
		out = append(out, s.chunks[hash])
	}
	return out
}
