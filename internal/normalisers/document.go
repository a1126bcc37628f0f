package normalisers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// NewResult wraps extracted text in a Document carrying a fresh ID, the
// connector metadata and the source MIME type and format.
func NewResult(raw *domain.RawDocument, title, content, format string) *driven.NormaliseResult {
	meta := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		meta[k] = v
	}
	meta["mime_type"] = raw.MIMEType
	if format != "" {
		meta["format"] = format
	}
	if _, ok := meta["filename"]; !ok && raw.URI != "" {
		meta["filename"] = filepath.Base(raw.URI)
	}
	if title == "" {
		title = TitleFromURI(raw)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:          uuid.New().String(),
			URI:         raw.URI,
			Title:       title,
			Content:     content,
			Metadata:    meta,
			ExtractedAt: time.Now(),
		},
	}
}

// TitleFromURI prefers a "title" set by the connector, then a readable
// form of the file name.
func TitleFromURI(raw *domain.RawDocument) string {
	if t, ok := raw.Metadata["title"].(string); ok && t != "" {
		return t
	}
	name := filepath.Base(raw.URI)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
