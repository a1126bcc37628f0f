// Package hasher stamps each chunk with the content hash of its text.
package hasher

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/contenthash"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.PostProcessor = (*Processor)(nil)

// Processor sets Chunk.ContentHash from Chunk.Text.
type Processor struct{}

// New creates a hasher processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "hasher"
}

// Process hashes every chunk in place and returns them.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].ContentHash = contenthash.Hash(chunks[i].Text)
	}
	return chunks, nil
}
