package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRawDocument_Fields tests RawDocument structure fields
func TestRawDocument_Fields(t *testing.T) {
	raw := RawDocument{
		SourceID: "corpus",
		URI:      "/corpus/document.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("PDF content here"),
		Metadata: map[string]any{"size": 1024},
	}

	assert.Equal(t, "corpus", raw.SourceID)
	assert.Equal(t, "/corpus/document.pdf", raw.URI)
	assert.Equal(t, "application/pdf", raw.MIMEType)
	assert.Equal(t, []byte("PDF content here"), raw.Content)
	assert.Equal(t, 1024, raw.Metadata["size"])
}

// TestChangeType_String tests change type names
func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(99).String())
}

// TestRawDocumentChange_Deleted tests that deletions carry no content
func TestRawDocumentChange_Deleted(t *testing.T) {
	change := RawDocumentChange{
		Type:     ChangeDeleted,
		Document: RawDocument{URI: "/corpus/gone.txt"},
	}

	assert.Equal(t, ChangeDeleted, change.Type)
	assert.Empty(t, change.Document.Content)
}
