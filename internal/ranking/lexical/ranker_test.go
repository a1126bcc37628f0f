package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestRanker_LibraryHours(t *testing.T) {
	r := New()
	candidates := []domain.Chunk{{Text: "Library hours: 9am-5pm", SourceLabel: "hours.txt"}}

	got, err := r.Rank(context.Background(), "When does the library open?", candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Library hours: 9am-5pm", got[0].Text)
}

func TestRanker_Ordering(t *testing.T) {
	r := New()
	candidates := []domain.Chunk{
		{Text: "The cafeteria serves lunch."},
		{Text: "Library opening hours are posted online."},
		{Text: "The library is on campus."},
		{Text: "Library opening hours change in summer."},
	}

	got, err := r.Rank(context.Background(), "library opening hours", candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Library opening hours are posted online.", got[0].Text)
	assert.Equal(t, "Library opening hours change in summer.", got[1].Text)
	assert.Equal(t, "The library is on campus.", got[2].Text)
}

func TestRanker_NoOverlap(t *testing.T) {
	r := New()
	got, err := r.Rank(context.Background(), "parking permits", []domain.Chunk{{Text: "Library hours"}}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRanker_StopwordOnlyQuery(t *testing.T) {
	r := New()
	got, err := r.Rank(context.Background(), "what is the", []domain.Chunk{{Text: "the what is"}}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRanker_Deterministic(t *testing.T) {
	r := New()
	candidates := []domain.Chunk{{Text: "exam dates"}, {Text: "exam rooms"}, {Text: "exam fees"}}

	first, err := r.Rank(context.Background(), "exam", candidates, 2)
	require.NoError(t, err)
	second, err := r.Rank(context.Background(), "exam", candidates, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "exam dates", first[0].Text)
	assert.Equal(t, "exam rooms", first[1].Text)
}

func TestRanker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Rank(ctx, "library", []domain.Chunk{{Text: "library"}}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRanker_Score(t *testing.T) {
	r := New(WithStopwords(nil))
	assert.InDelta(t, 1.0, r.Score("a b", "b a"), 1e-9)
	assert.InDelta(t, 0.5, r.Score("a b", "a c"), 1e-9)
	assert.Equal(t, 0.0, r.Score("", "a"))
}
