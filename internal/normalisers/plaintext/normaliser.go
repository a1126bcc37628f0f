// Package plaintext provides the fallback normaliser for text formats
// that need no markup removal.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser passes text through, replacing invalid UTF-8 and
// normalising line endings.
type Normaliser struct{}

// New creates a plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-shellscript",
		"text/x-sql",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// SupportedConnectorTypes returns nil: all connectors.
func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority returns the fallback priority.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise returns the file content as the document text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	return normalisers.NewResult(raw, "", Clean(raw.Content), "text"), nil
}

// Clean converts bytes to valid UTF-8 text with "\n" line endings and
// no byte order mark.
func Clean(b []byte) string {
	text := string(b)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
