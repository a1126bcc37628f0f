package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmptyQuery", ErrEmptyQuery},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrStoreInvariant", ErrStoreInvariant},
		{"ErrConnectorClosed", ErrConnectorClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestValidationError tests message and unwrapping
func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "query", Reason: "must not be empty"}

	assert.Equal(t, "invalid query: must not be empty", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// TestIngestError tests message and unwrapping
func TestIngestError(t *testing.T) {
	cause := errors.New("permission denied")
	err := &IngestError{Op: "open", Path: "/corpus", Err: cause}

	assert.Equal(t, "ingest open /corpus: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *IngestError
	wrapped := fmt.Errorf("run: %w", err)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "/corpus", target.Path)
}

// TestDocumentError tests message and unwrapping
func TestDocumentError(t *testing.T) {
	err := &DocumentError{URI: "/corpus/locked.txt", Err: fs.ErrPermission}

	assert.Equal(t, "read /corpus/locked.txt: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)

	var target *DocumentError
	require.ErrorAs(t, fmt.Errorf("walk: %w", err), &target)
	assert.Equal(t, "/corpus/locked.txt", target.URI)
}

// TestProviderError tests message formatting and retry classification
func TestProviderError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &ProviderError{Provider: "openai", StatusCode: 401, Err: errors.New("unauthorized")}
		assert.Equal(t, "openai: status 401: unauthorized", err.Error())
		assert.False(t, err.Temporary())
	})

	t.Run("without status code", func(t *testing.T) {
		err := &ProviderError{Provider: "ollama", Err: errors.New("connection refused")}
		assert.Equal(t, "ollama: connection refused", err.Error())
		assert.True(t, err.Temporary())
	})

	tests := []struct {
		status    int
		temporary bool
	}{
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := &ProviderError{Provider: "openai", StatusCode: tt.status, Err: errors.New("x")}
			assert.Equal(t, tt.temporary, err.Temporary())
		})
	}

	t.Run("non-retryable cause", func(t *testing.T) {
		cause := errors.New("bad json")
		err := &ProviderError{Provider: "openai", Err: NonRetryable(cause)}
		assert.False(t, err.Temporary())
		assert.ErrorIs(t, err, cause)
	})
}

// TestStoreError tests message and unwrapping
func TestStoreError(t *testing.T) {
	err := &StoreError{Op: "add", Err: ErrStoreInvariant}

	assert.Equal(t, "store add: store invariant violated", err.Error())
	assert.ErrorIs(t, err, ErrStoreInvariant)
}
