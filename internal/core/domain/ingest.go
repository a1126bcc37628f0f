package domain

import (
	"fmt"
	"time"
)

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Dir is the corpus directory that was walked.
	Dir string `json:"dir"`

	// Documents is the number of documents that produced chunks.
	Documents int `json:"documents"`

	// Skipped counts documents with no extractable text.
	Skipped int `json:"skipped"`

	// Failed counts documents whose extraction or storage failed.
	Failed int `json:"failed"`

	// ChunksSeen is the number of chunks produced by the pipeline.
	ChunksSeen int `json:"chunks_seen"`

	// ChunksAdded is the number of chunks new to the store.
	ChunksAdded int `json:"chunks_added"`

	// Duplicates is the number of chunks already present.
	Duplicates int `json:"duplicates"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Merge adds the counters of other into r.
func (r *IngestReport) Merge(other IngestReport) {
	r.Documents += other.Documents
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.ChunksSeen += other.ChunksSeen
	r.ChunksAdded += other.ChunksAdded
	r.Duplicates += other.Duplicates
}

// String returns a one-line summary.
func (r *IngestReport) String() string {
	return fmt.Sprintf("%d documents, %d chunks added, %d duplicates, %d skipped, %d failed in %s",
		r.Documents, r.ChunksAdded, r.Duplicates, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
}
