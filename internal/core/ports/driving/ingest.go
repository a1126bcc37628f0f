package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// CorpusIngester populates the chunk store from a corpus directory.
// Ingestion is idempotent: re-running it over the same files adds nothing.
type CorpusIngester interface {
	// Ingest walks dir and stores every new chunk.
	// An unreadable dir yields a *domain.IngestError. Files that fail
	// extraction are logged and counted, never fatal.
	Ingest(ctx context.Context, dir string) (*domain.IngestReport, error)

	// IngestFile ingests a single file.
	IngestFile(ctx context.Context, path string) (*domain.IngestReport, error)
}

// Watcher re-ingests files as they change.
type Watcher interface {
	// Watch blocks until ctx is cancelled, ingesting created or updated files.
	Watch(ctx context.Context, dir string) error
}
