package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, ranker or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyQuery indicates a query with no content after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrLLMUnavailable indicates the completion provider is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// The semantic ranker cannot be used without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreInvariant indicates the chunk store was used incorrectly.
	ErrStoreInvariant = errors.New("store invariant violated")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")
)

// ValidationError reports input rejected before any work was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IngestError reports a failure that stops a whole ingestion run,
// such as an unreadable corpus directory. Per-document failures are
// never reported this way.
type IngestError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// DocumentError reports a single document a connector could not read.
// The walk continues and ingestion counts the document as failed.
type DocumentError struct {
	URI string
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("read %s: %v", e.URI, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// ProviderError reports a failed call to a completion or embedding provider.
type ProviderError struct {
	// Provider is the adapter name (e.g. "openai").
	Provider string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the call could succeed.
func (e *ProviderError) Temporary() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, errNonRetryable)
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// errNonRetryable marks provider errors that must never be retried
// even without a status code (e.g. malformed responses).
var errNonRetryable = errors.New("non-retryable")

// NonRetryable wraps err so that ProviderError.Temporary reports false.
func NonRetryable(err error) error {
	return fmt.Errorf("%w: %w", errNonRetryable, err)
}

// StoreError reports misuse of a chunk store. It signals a programming
// error, never a user-facing condition.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}
