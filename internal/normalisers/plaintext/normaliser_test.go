package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Contains(t, n.SupportedMIMETypes(), "text/plain")
	assert.Nil(t, n.SupportedConnectorTypes())
	assert.Equal(t, 5, n.Priority())
}

func TestNormalise(t *testing.T) {
	raw := &domain.RawDocument{
		SourceID: "corpus",
		URI:      "/docs/library_hours.txt",
		MIMEType: "text/plain",
		Content:  []byte("Library hours: 9am-5pm\r\nClosed on Sundays."),
		Metadata: map[string]any{"filename": "library_hours.txt"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "/docs/library_hours.txt", doc.URI)
	assert.Equal(t, "library hours", doc.Title)
	assert.Equal(t, "Library hours: 9am-5pm\nClosed on Sundays.", doc.Content)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.Equal(t, "library_hours.txt", doc.SourceLabel())
	assert.False(t, doc.ExtractedAt.IsZero())
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/a.txt",
		Content:  []byte("x"),
		Metadata: map[string]any{"title": "Campus Guide"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Campus Guide", result.Document.Title)
	assert.Equal(t, "a.txt", result.Document.Metadata["filename"])
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Clean([]byte("a\r\nb\rc")))
	assert.Equal(t, "text", Clean([]byte("\xEF\xBB\xBFtext")))
	assert.Equal(t, "a\uFFFDb", Clean([]byte("a\xffb")))
}
