package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService turns a query into a block of grounding context.
type RetrievalService struct {
	store driven.ChunkStore
	topK  int
}

// NewRetrievalService creates a retrieval service returning topK chunks
// per query. Negative values are treated as zero.
func NewRetrievalService(store driven.ChunkStore, topK int) *RetrievalService {
	if topK < 0 {
		topK = 0
	}
	return &RetrievalService{store: store, topK: topK}
}

// TopK returns the number of chunks retrieved per query.
func (s *RetrievalService) TopK() int {
	return s.topK
}

// Retrieve returns the top-k chunks joined by newlines, best first.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) (domain.RetrievalContext, error) {
	chunks, err := s.Search(ctx, query, s.topK)
	if err != nil {
		return domain.RetrievalContext{Text: domain.NoRelevantInformation}, err
	}
	if len(chunks) == 0 {
		logger.Debug("No chunks matched %q", query)
		return domain.RetrievalContext{Text: domain.NoRelevantInformation}, nil
	}

	logger.Debug("Retrieved %d chunks for %q", len(chunks), query)
	return domain.NewRetrievalContext(chunks), nil
}

// Search returns at most topK chunks ranked by the store.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int) ([]domain.Chunk, error) {
	if topK <= 0 {
		return []domain.Chunk{}, nil
	}
	chunks, err := s.store.SimilaritySearch(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (s *RetrievalService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
