package domain

import "time"

// Document is the extracted text of a single corpus file.
// It is transient: the ingestion pipeline chunks it and then discards it.
type Document struct {
	// ID is the unique identifier for this ingestion of the document.
	ID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after extraction.
	Content string

	// Metadata contains arbitrary key-value pairs from the connector.
	Metadata map[string]any

	// ExtractedAt is when the text was extracted.
	ExtractedAt time.Time
}

// SourceLabel returns the label recorded on chunks produced from the document.
// The connector's filename is preferred, falling back to the URI.
func (d *Document) SourceLabel() string {
	if d.Metadata != nil {
		if name, ok := d.Metadata["filename"].(string); ok && name != "" {
			return name
		}
	}
	return d.URI
}

// Chunk is a bounded, possibly overlapping substring of a document.
// Chunks are content-addressed: ContentHash is a pure function of Text.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// SourceLabel identifies the document the chunk came from (e.g. filename).
	SourceLabel string

	// ContentHash is the lowercase hex digest of Text and the dedup key.
	ContentHash string

	// Position is the ordinal position within the source document.
	Position int

	// Metadata is retained for observability and never used for ranking.
	Metadata map[string]any
}
