package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.CorpusIngester = (*IngestService)(nil)

// IngestService walks a corpus and stores every new chunk.
type IngestService struct {
	store    driven.ChunkStore
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	factory  driven.ConnectorFactory
	workers  int
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithWorkers sets the number of documents processed in parallel.
// Values below one are ignored.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.ChunkStore,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	factory driven.ConnectorFactory,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:    store,
		registry: registry,
		pipeline: pipeline,
		factory:  factory,
		workers:  domain.DefaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest walks dir and stores every chunk not already present.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	start := time.Now()
	report := &domain.IngestReport{Dir: dir}

	connector, err := s.factory.Create(ctx, dir)
	if err != nil {
		return report, &domain.IngestError{Op: "open", Path: dir, Err: err}
	}
	defer connector.Close()

	if err := connector.Validate(ctx); err != nil {
		if ctx.Err() != nil {
			return report, &domain.IngestError{Op: "ingest", Path: dir, Err: ctx.Err()}
		}
		return report, &domain.IngestError{Op: "validate", Path: dir, Err: err}
	}

	logger.Section("Ingesting " + dir)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	docs, errs := connector.FullSync(runCtx)

	var (
		mu      sync.Mutex
		fatal   error
		walkErr error
		wg      sync.WaitGroup
	)

	walkDone := make(chan struct{})
	go func() {
		defer close(walkDone)
		for err := range errs {
			var docErr *domain.DocumentError
			if errors.As(err, &docErr) {
				logger.Warn("skipping %s: %v", docErr.URI, docErr.Err)
				mu.Lock()
				report.Failed++
				mu.Unlock()
				continue
			}
			if walkErr == nil {
				walkErr = err
			}
		}
	}()

	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range docs {
				if runCtx.Err() != nil {
					continue
				}
				logger.Debug("Processing: %s", raw.URI)
				r, err := s.ingestDocument(runCtx, &raw)

				mu.Lock()
				report.Merge(r)
				if err != nil && fatal == nil {
					fatal = err
					cancel()
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	<-walkDone

	report.Duration = time.Since(start)

	switch {
	case ctx.Err() != nil:
		return report, &domain.IngestError{Op: "ingest", Path: dir, Err: ctx.Err()}
	case fatal != nil:
		return report, fatal
	case walkErr != nil && !errors.Is(walkErr, context.Canceled):
		return report, &domain.IngestError{Op: "walk", Path: dir, Err: walkErr}
	}

	logger.Info("Ingest complete: %s", report)
	return report, nil
}

// IngestFile ingests a single file.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.IngestReport, error) {
	start := time.Now()
	dir := filepath.Dir(path)
	report := &domain.IngestReport{Dir: dir}

	connector, err := s.factory.Create(ctx, dir)
	if err != nil {
		return report, &domain.IngestError{Op: "open", Path: path, Err: err}
	}
	defer connector.Close()

	raw, err := connector.Fetch(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return report, &domain.IngestError{Op: "ingest", Path: path, Err: ctx.Err()}
		}
		return report, &domain.IngestError{Op: "read", Path: path, Err: err}
	}

	r, err := s.ingestDocument(ctx, &raw)
	report.Merge(r)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	return report, nil
}

// ingestDocument extracts, chunks and stores one document. Extraction
// problems are counted in the returned report; only a store failure is
// returned as an error.
func (s *IngestService) ingestDocument(ctx context.Context, raw *domain.RawDocument) (domain.IngestReport, error) {
	var r domain.IngestReport

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Debug("Skipping %s: %v", raw.URI, err)
			r.Skipped = 1
			return r, nil
		}
		logger.Warn("extract %s: %v", raw.URI, err)
		r.Failed = 1
		return r, nil
	}

	if strings.TrimSpace(result.Document.Content) == "" {
		logger.Warn("no text extracted from %s", raw.URI)
		r.Skipped = 1
		return r, nil
	}

	chunks, err := s.pipeline.Process(ctx, &result.Document)
	if err != nil {
		logger.Warn("chunk %s: %v", raw.URI, err)
		r.Failed = 1
		return r, nil
	}

	r.Documents = 1
	r.ChunksSeen = len(chunks)

	for _, chunk := range chunks {
		exists, err := s.store.Contains(ctx, chunk.ContentHash)
		if err != nil {
			return r, &domain.IngestError{Op: "store", Path: raw.URI, Err: err}
		}
		if exists {
			r.Duplicates++
			continue
		}
		added, err := s.store.AddChunk(ctx, chunk)
		if err != nil {
			return r, &domain.IngestError{Op: "store", Path: raw.URI, Err: err}
		}
		if added {
			r.ChunksAdded++
		} else {
			r.Duplicates++
		}
	}

	logger.Debug("%s: %d chunks, %d new", raw.URI, r.ChunksSeen, r.ChunksAdded)
	return r, nil
}

// Ensure WatchService implements the interface.
var _ driving.Watcher = (*WatchService)(nil)

// WatchService re-ingests files as they are created or modified.
// Deleted files keep their chunks: the store is content-addressed and
// the same text may belong to other documents.
type WatchService struct {
	ingest  *IngestService
	factory driven.ConnectorFactory
}

// NewWatchService creates a watch service that stores through ingest.
func NewWatchService(ingest *IngestService) *WatchService {
	return &WatchService{ingest: ingest, factory: ingest.factory}
}

// Watch blocks until ctx is cancelled.
func (w *WatchService) Watch(ctx context.Context, dir string) error {
	connector, err := w.factory.Create(ctx, dir)
	if err != nil {
		return &domain.IngestError{Op: "open", Path: dir, Err: err}
	}
	defer connector.Close()

	if !connector.Capabilities().SupportsWatch {
		return fmt.Errorf("%w: %s connector cannot watch", domain.ErrUnsupportedType, connector.Type())
	}
	if err := connector.Validate(ctx); err != nil {
		return &domain.IngestError{Op: "validate", Path: dir, Err: err}
	}

	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			w.apply(ctx, change)
		}
	}
}

func (w *WatchService) apply(ctx context.Context, change domain.RawDocumentChange) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		r, err := w.ingest.ingestDocument(ctx, &change.Document)
		if err != nil {
			logger.Error("ingest %s: %v", change.Document.URI, err)
			return
		}
		logger.Info("%s %s: %d chunks added, %d duplicates",
			change.Type, change.Document.URI, r.ChunksAdded, r.Duplicates)
	case domain.ChangeDeleted:
		logger.Debug("Removed %s; stored chunks are kept", change.Document.URI)
	}
}
