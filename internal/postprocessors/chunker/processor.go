// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// ErrInvalidChunking reports a chunk size and overlap that cannot make progress.
var ErrInvalidChunking = fmt.Errorf("%w: chunk parameters", domain.ErrInvalidInput)

var _ driven.PostProcessor = (*Processor)(nil)

// Split cuts text into chunks of at most chunkSize characters, each
// starting chunkSize-overlap characters after the previous one.
// Characters are Unicode code points, so no chunk splits a UTF-8 sequence.
//
// Empty text yields no chunks. Text no longer than chunkSize yields
// exactly one chunk equal to text.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= chunkSize {
		return []string{text}, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, n/step+1)
	for offset := 0; offset < n; offset += step {
		end := min(offset+chunkSize, n)
		chunks = append(chunks, string(runes[offset:end]))
	}
	return chunks, nil
}

func validate(chunkSize, overlap int) error {
	switch {
	case chunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunking, chunkSize)
	case overlap < 0:
		return fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidChunking, overlap)
	case overlap >= chunkSize:
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, overlap, chunkSize)
	}
	return nil
}

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns ErrInvalidChunking if the resulting parameters cannot make progress.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	texts, err := Split(doc.Content, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	label := doc.SourceLabel()
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			Text:        text,
			SourceLabel: label,
			Position:    i,
			Metadata: map[string]any{
				"source":      label,
				"document_id": doc.ID,
			},
		})
	}
	return chunks, nil
}
