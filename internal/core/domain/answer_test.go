package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewRetrievalContext tests chunk joining and the empty result
func TestNewRetrievalContext(t *testing.T) {
	chunks := []Chunk{{Text: "Library hours: 9am-5pm."}, {Text: "Closed on Sundays."}}

	rc := NewRetrievalContext(chunks)
	assert.True(t, rc.Found)
	assert.Equal(t, chunks, rc.Chunks)
	assert.Equal(t, "Library hours: 9am-5pm.\nClosed on Sundays.", rc.Text)

	for _, empty := range [][]Chunk{nil, {}} {
		rc := NewRetrievalContext(empty)
		assert.False(t, rc.Found)
		assert.Empty(t, rc.Chunks)
		assert.Equal(t, NoRelevantInformation, rc.Text)
	}
}

// TestSentinels_Distinct tests that sentinel strings never collide
func TestSentinels_Distinct(t *testing.T) {
	values := []string{NoRelevantInformation, NoResponseAvailable, EmptyQueryHint, NoContextNotice}
	seen := make(map[string]bool)
	for _, v := range values {
		assert.NotEmpty(t, v)
		assert.False(t, seen[v], "duplicate sentinel %q", v)
		seen[v] = true
	}
}

// TestAnswer_Grounded tests outcome classification
func TestAnswer_Grounded(t *testing.T) {
	assert.True(t, Answer{Text: "", Outcome: OutcomeAnswered}.Grounded())
	assert.False(t, Answer{Text: NoResponseAvailable, Outcome: OutcomeNoResponse}.Grounded())
	assert.False(t, Answer{Text: EmptyQueryHint, Outcome: OutcomeValidation}.Grounded())
	assert.Equal(t, "provider_error", OutcomeProviderError.String())
}

// TestIngestReport_Merge tests counter accumulation
func TestIngestReport_Merge(t *testing.T) {
	r := IngestReport{Documents: 1, ChunksAdded: 2}
	r.Merge(IngestReport{Documents: 2, Skipped: 1, Failed: 1, ChunksSeen: 5, ChunksAdded: 3, Duplicates: 2})

	assert.Equal(t, 3, r.Documents)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 5, r.ChunksSeen)
	assert.Equal(t, 5, r.ChunksAdded)
	assert.Equal(t, 2, r.Duplicates)
}

// TestIngestReport_String tests the summary line
func TestIngestReport_String(t *testing.T) {
	r := IngestReport{Documents: 2, ChunksAdded: 4, Duplicates: 1, Duration: 1500 * time.Millisecond}
	assert.Equal(t, "2 documents, 4 chunks added, 1 duplicates, 0 skipped, 0 failed in 1.5s", r.String())
}
