package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/builtin"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestIngester(t *testing.T, store *memory.ChunkStore, opts ...IngestOption) *IngestService {
	t.Helper()
	pipeline, err := postprocessors.NewIngestPipeline(domain.RAGSettings{ChunkSize: 40, ChunkOverlap: 10})
	require.NoError(t, err)
	return NewIngestService(store, builtin.NewRegistry(), pipeline, filesystem.Factory{}, opts...)
}

func testCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "hours.txt", "Library hours: 9am-5pm. Closed on Sundays and public holidays.")
	writeFile(t, dir, "guide.md", "# Mensa\n\nThe **mensa** opens at 11am and serves lunch until 2pm.")
	writeFile(t, dir, "empty.txt", "   \n")
	writeFile(t, dir, "logo.png", "\x89PNG not really")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, ".secret.txt", "hidden text must not be stored")
	return dir
}

func TestIngestService_Ingest(t *testing.T) {
	dir := testCorpus(t)
	store := memory.NewChunkStore(nil)
	svc := newTestIngester(t, store)

	report, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, report.Dir)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Positive(t, report.ChunksAdded)
	assert.Equal(t, report.ChunksSeen, report.ChunksAdded+report.Duplicates)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ChunksAdded, count)

	chunks, err := store.SimilaritySearch(context.Background(), "hidden text", 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.NotContains(t, c.Text, "hidden text must not be stored")
	}
}

func TestIngestService_Ingest_UnreadableFileCountsAsFailed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read mode 000 files")
	}
	dir := t.TempDir()
	writeFile(t, dir, "hours.txt", "Library hours: 9am-5pm. Closed on Sundays.")
	locked := writeFile(t, dir, "locked.txt", "Staff only: the vault code is 1234.")
	require.NoError(t, os.Chmod(locked, 0o000))

	store := memory.NewChunkStore(nil)
	report, err := newTestIngester(t, store).Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Failed)
	assert.Positive(t, report.ChunksAdded)

	chunks, err := store.SimilaritySearch(context.Background(), "vault code", 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.NotContains(t, c.Text, "vault")
	}
}

// lockedFilesConnector reports a set of unreadable files before the
// documents of the wrapped connector.
type lockedFilesConnector struct {
	driven.Connector
	locked []string
}

func (c lockedFilesConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	innerDocs, innerErrs := c.Connector.FullSync(ctx)
	docs := make(chan domain.RawDocument)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)
		for _, uri := range c.locked {
			errs <- &domain.DocumentError{URI: uri, Err: fs.ErrPermission}
		}
		for doc := range innerDocs {
			docs <- doc
		}
		for err := range innerErrs {
			errs <- err
		}
	}()
	return docs, errs
}

type lockedFilesFactory struct {
	locked []string
}

func (f lockedFilesFactory) Create(ctx context.Context, root string) (driven.Connector, error) {
	c, err := filesystem.Factory{}.Create(ctx, root)
	if err != nil {
		return nil, err
	}
	return lockedFilesConnector{Connector: c, locked: f.locked}, nil
}

func TestIngestService_Ingest_DocumentErrorsCountAsFailed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hours.txt", "Library hours: 9am-5pm. Closed on Sundays.")

	pipeline, err := postprocessors.NewIngestPipeline(domain.RAGSettings{ChunkSize: 40, ChunkOverlap: 10})
	require.NoError(t, err)
	factory := lockedFilesFactory{locked: []string{"/corpus/a.txt", "/corpus/b.txt", "/corpus/c.txt"}}
	svc := NewIngestService(memory.NewChunkStore(nil), builtin.NewRegistry(), pipeline, factory)

	report, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 3, report.Failed)
	assert.Positive(t, report.ChunksAdded)
}

func TestIngestService_Ingest_Idempotent(t *testing.T) {
	dir := testCorpus(t)
	store := memory.NewChunkStore(nil)
	svc := newTestIngester(t, store)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, dir)
	require.NoError(t, err)
	before, err := store.Count(ctx)
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, dir)
	require.NoError(t, err)
	after, err := store.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Zero(t, second.ChunksAdded)
	assert.Equal(t, first.ChunksSeen, second.Duplicates)
}

func TestIngestService_Ingest_OverlappingCorpus(t *testing.T) {
	dir := t.TempDir()
	text := "Library hours: 9am-5pm. Closed on Sundays and public holidays."
	writeFile(t, dir, "hours.txt", text)
	writeFile(t, dir, "copy/hours-copy.txt", text)

	store := memory.NewChunkStore(nil)
	svc := newTestIngester(t, store, WithWorkers(1))

	report, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, report.ChunksAdded, report.Duplicates)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ChunksAdded, count)
}

func TestIngestService_Ingest_MissingDirectory(t *testing.T) {
	svc := newTestIngester(t, memory.NewChunkStore(nil))

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := svc.Ingest(context.Background(), missing)
	require.Error(t, err)

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "validate", ingestErr.Op)
	assert.Equal(t, missing, ingestErr.Path)
}

func TestIngestService_Ingest_EmptyDirArgument(t *testing.T) {
	svc := newTestIngester(t, memory.NewChunkStore(nil))

	_, err := svc.Ingest(context.Background(), "")

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "open", ingestErr.Op)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_Ingest_Cancelled(t *testing.T) {
	dir := testCorpus(t)
	svc := newTestIngester(t, memory.NewChunkStore(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Ingest(ctx, dir)

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.ErrorIs(t, err, context.Canceled)
}

// failingStore rejects every lookup.
type failingStore struct {
	*memory.ChunkStore
}

func (failingStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("disk full")
}

func TestIngestService_Ingest_StoreFailureIsFatal(t *testing.T) {
	dir := testCorpus(t)
	pipeline, err := postprocessors.NewIngestPipeline(domain.DefaultAppSettings().RAG)
	require.NoError(t, err)

	svc := NewIngestService(failingStore{memory.NewChunkStore(nil)}, builtin.NewRegistry(), pipeline, filesystem.Factory{})

	_, err = svc.Ingest(context.Background(), dir)

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "store", ingestErr.Op)
	assert.ErrorContains(t, err, "disk full")
}

func TestIngestService_IngestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hours.txt", "Library hours: 9am-5pm. Closed on Sundays.")
	store := memory.NewChunkStore(nil)
	svc := newTestIngester(t, store)

	report, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Positive(t, report.ChunksAdded)

	again, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, again.ChunksAdded)
	assert.Equal(t, report.ChunksSeen, again.Duplicates)
}

func TestIngestService_IngestFile_Missing(t *testing.T) {
	svc := newTestIngester(t, memory.NewChunkStore(nil))

	_, err := svc.IngestFile(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "read", ingestErr.Op)
}

func TestWithWorkers(t *testing.T) {
	svc := newTestIngester(t, memory.NewChunkStore(nil), WithWorkers(8))
	assert.Equal(t, 8, svc.workers)

	svc = newTestIngester(t, memory.NewChunkStore(nil), WithWorkers(0))
	assert.Equal(t, domain.DefaultIngestWorkers, svc.workers)
}

func TestWatchService_Watch(t *testing.T) {
	dir := t.TempDir()
	store := memory.NewChunkStore(nil)
	watcher := NewWatchService(newTestIngester(t, store))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx, dir) }()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, dir, "new.txt", "The exam office is in building B, room 101.")

	require.Eventually(t, func() bool {
		n, err := store.Count(context.Background())
		return err == nil && n > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchService_Watch_MissingDirectory(t *testing.T) {
	watcher := NewWatchService(newTestIngester(t, memory.NewChunkStore(nil)))

	err := watcher.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))

	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "validate", ingestErr.Op)
}
