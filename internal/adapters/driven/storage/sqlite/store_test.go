package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_Suite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) driven.ChunkStore {
		return setupTestStore(t)
	})
}

func TestNewStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DBFile), store.Path())
}

func TestNewStore_ReopenKeepsChunks(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = store.AddChunk(ctx, storetest.NewChunk("persisted chunk", "p.txt"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestStore_MetadataRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunk := storetest.NewChunk("Library hours: 9am-5pm", "hours.txt")
	chunk.Position = 3
	_, err := store.AddChunk(ctx, chunk)
	require.NoError(t, err)

	got, err := store.SimilaritySearch(ctx, "library", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Position)
	assert.Equal(t, "hours.txt", got[0].Metadata["source"])
}

func TestStore_InsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"exam c", "exam a", "exam b"} {
		_, err := store.AddChunk(ctx, storetest.NewChunk(text, "x"))
		require.NoError(t, err)
	}

	all, err := store.all(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "exam c", all[0].Text)
	assert.Equal(t, "exam a", all[1].Text)
	assert.Equal(t, "exam b", all[2].Text)
}
