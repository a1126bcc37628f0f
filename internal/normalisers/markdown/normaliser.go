// Package markdown provides a normaliser that reduces Markdown to
// readable plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedConnectorTypes returns nil: all connectors.
func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority returns the generic MIME priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips Markdown syntax. The first level-one heading becomes
// the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := plaintext.Clean(raw.Content)
	return normalisers.NewResult(raw, heading(text), Strip(text), "markdown"), nil
}

func heading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// rewrite is one substitution applied by Strip, in order.
type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var rewrites = []rewrite{
	{regexp.MustCompile("(?s)```.*?```"), ""},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}[ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`), ""},
	{regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`), "$2"},
	{regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*`), "$1$2"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Strip removes common Markdown formatting, keeping the readable text.
// Inline code keeps its content; fenced code blocks are dropped.
func Strip(text string) string {
	for _, r := range rewrites {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}
