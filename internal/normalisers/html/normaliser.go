// Package html provides a normaliser that extracts readable text from
// HTML pages.
package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates an HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedConnectorTypes returns nil: all connectors.
func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority returns the generic MIME priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips tags and decodes entities. The <title> element
// becomes the document title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := plaintext.Clean(raw.Content)
	return normalisers.NewResult(raw, Title(page), Text(page), "html"), nil
}

var (
	titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	// invisible elements are removed with their content.
	invisible = func() []*regexp.Regexp {
		var res []*regexp.Regexp
		for _, tag := range []string{"head", "script", "style", "noscript", "svg", "template"} {
			res = append(res, regexp.MustCompile(`(?is)<`+tag+`\b[^>]*>.*?</`+tag+`>`))
		}
		return res
	}()

	comments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBreak = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|tr|table|blockquote|pre|section|article|header|footer|nav|br|hr)\b[^>]*>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blanks     = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
)

// Title returns the decoded <title> text, or "" when absent.
func Title(page string) string {
	m := titleTag.FindStringSubmatch(page)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(blanks.ReplaceAllString(html.UnescapeString(m[1]), " "))
}

// Text returns the visible text of page, one block element per line.
func Text(page string) string {
	for _, re := range invisible {
		page = re.ReplaceAllString(page, "")
	}
	page = comments.ReplaceAllString(page, "")
	page = blockBreak.ReplaceAllString(page, "\n")
	page = anyTag.ReplaceAllString(page, "")
	page = html.UnescapeString(page)

	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(blanks.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
