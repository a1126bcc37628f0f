package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Connector streams documents from a corpus source.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the configured source ID.
	SourceID() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks the source is readable.
	// For filesystem, this checks the path exists and is a readable directory.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Documents that cannot be read are sent on the error channel as
	// *domain.DocumentError; any other error ends the walk. Consumers
	// drain both channels concurrently. Both are closed when the walk ends.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Fetch reads a single document by URI.
	Fetch(ctx context.Context, uri string) (domain.RawDocument, error)

	// Watch listens for real-time changes.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push real-time events.
	SupportsWatch bool

	// SupportsHierarchy indicates the source has nested structure.
	SupportsHierarchy bool

	// SupportsBinary indicates the connector handles binary content.
	SupportsBinary bool

	// SupportsValidation indicates Validate() performs actual validation.
	SupportsValidation bool
}

// ConnectorFactory creates a connector for a corpus root.
type ConnectorFactory interface {
	Create(ctx context.Context, root string) (Connector, error)
}
