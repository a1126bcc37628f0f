// Package storetest holds the behaviour every driven.ChunkStore must share.
// Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/contenthash"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Factory returns an empty store using the lexical ranker.
type Factory func(t *testing.T) driven.ChunkStore

// NewChunk builds a hashed chunk.
func NewChunk(text, label string) domain.Chunk {
	return domain.Chunk{
		Text:        text,
		SourceLabel: label,
		ContentHash: contenthash.Hash(text),
		Metadata:    map[string]any{"source": label},
	}
}

// Run exercises the shared ChunkStore contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty store search", func(t *testing.T) {
		store := newStore(t)
		for _, q := range []string{"", "library", "When does the library open?"} {
			for _, k := range []int{0, 1, 3, 100} {
				got, err := store.SimilaritySearch(context.Background(), q, k)
				require.NoError(t, err)
				assert.Empty(t, got)
			}
		}
	})

	t.Run("add and contains", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		c := NewChunk("Library hours: 9am-5pm", "hours.txt")

		ok, err := store.Contains(ctx, c.ContentHash)
		require.NoError(t, err)
		assert.False(t, ok)

		added, err := store.AddChunk(ctx, c)
		require.NoError(t, err)
		assert.True(t, added)

		ok, err = store.Contains(ctx, c.ContentHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicate hash is a no-op", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		c := NewChunk("same text", "a.txt")

		added, err := store.AddChunk(ctx, c)
		require.NoError(t, err)
		assert.True(t, added)

		dup := c
		dup.SourceLabel = "b.txt"
		added, err = store.AddChunk(ctx, dup)
		require.NoError(t, err)
		assert.False(t, added)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := store.SimilaritySearch(ctx, "same text", 3)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a.txt", got[0].SourceLabel)
	})

	t.Run("missing hash is a store error", func(t *testing.T) {
		store := newStore(t)
		_, err := store.AddChunk(context.Background(), domain.Chunk{Text: "unhashed"})
		require.Error(t, err)

		var serr *domain.StoreError
		assert.ErrorAs(t, err, &serr)
		assert.ErrorIs(t, err, domain.ErrStoreInvariant)
	})

	t.Run("library hours retrieval", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, err := store.AddChunk(ctx, NewChunk("Library hours: 9am-5pm", "hours.txt"))
		require.NoError(t, err)

		got, err := store.SimilaritySearch(ctx, "When does the library open?", 3)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Library hours: 9am-5pm", got[0].Text)
		assert.Equal(t, "hours.txt", got[0].SourceLabel)
		assert.Equal(t, contenthash.Hash("Library hours: 9am-5pm"), got[0].ContentHash)
	})

	t.Run("topK cardinality and determinism", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for i := 0; i < 12; i++ {
			_, err := store.AddChunk(ctx, NewChunk(fmt.Sprintf("exam room %d is in building %d", i, i%3), "exams.txt"))
			require.NoError(t, err)
		}

		for _, k := range []int{0, 1, 3, 5, 50} {
			got, err := store.SimilaritySearch(ctx, "exam room", k)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), k)
		}

		first, err := store.SimilaritySearch(ctx, "exam room building", 5)
		require.NoError(t, err)
		require.Len(t, first, 5)
		assert.Equal(t, "exam room 0 is in building 0", first[0].Text)

		var wg sync.WaitGroup
		results := make([][]domain.Chunk, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got, err := store.SimilaritySearch(ctx, "exam room building", 5)
				assert.NoError(t, err)
				results[i] = got
			}(i)
		}
		wg.Wait()
		for _, got := range results {
			assert.Equal(t, texts(first), texts(got))
		}
	})

	t.Run("negative topK returns nothing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, err := store.AddChunk(ctx, NewChunk("library", "x"))
		require.NoError(t, err)

		got, err := store.SimilaritySearch(ctx, "library", -1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("concurrent inserts of the same hash", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		c := NewChunk("contended chunk", "race.txt")

		var wg sync.WaitGroup
		var mu sync.Mutex
		addedCount := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				added, err := store.AddChunk(ctx, c)
				assert.NoError(t, err)
				if added {
					mu.Lock()
					addedCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, addedCount)
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func texts(chunks []domain.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out
}
