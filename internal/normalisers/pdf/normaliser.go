// Package pdf provides a normaliser that extracts the text layer of PDF
// files with rsc.io/pdf. Scanned pages without a text layer yield no text.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedConnectorTypes returns nil: all connectors.
func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority returns the generic MIME priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts page text in content order, one line per text row
// and pages separated by a blank line. The document info title is used
// when present.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, text, err := Extract(ctx, raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf %s: %w", raw.URI, err)
	}
	return normalisers.NewResult(raw, title, text, "pdf"), nil
}

// Extract returns the info title and text of a PDF file.
// Malformed files are reported as errors.
func Extract(ctx context.Context, data []byte) (title, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		var t string
		if glyphs := page.Content().Text; zeroWidth(glyphs) {
			t = streamText(page)
		} else {
			t = pageText(glyphs)
		}
		if t != "" {
			pages = append(pages, t)
		}
	}
	return title, strings.Join(pages, "\n\n"), nil
}

// pageText joins glyphs into lines. A new line starts when the baseline
// moves by more than half the font size; a space is inserted when the
// horizontal gap exceeds a fifth of it.
func pageText(glyphs []pdf.Text) string {
	var (
		sb    strings.Builder
		line  strings.Builder
		lines []string
		prev  *pdf.Text
	)

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for i := range glyphs {
		g := &glyphs[i]
		s := strings.ReplaceAll(g.S, "\x00", "")
		if s == "" {
			continue
		}
		if prev != nil {
			size := math.Max(g.FontSize, 1)
			switch {
			case math.Abs(g.Y-prev.Y) > size/2:
				flush()
			case g.X-(prev.X+prev.W) > size/5 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(s, " "):
				line.WriteByte(' ')
			}
		}
		line.WriteString(s)
		prev = g
	}
	flush()

	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l)
	}
	return sb.String()
}

// zeroWidth reports whether no glyph carries an advance width. Standard-14
// fonts declared without /Widths come out this way, which defeats the
// word-gap heuristic in pageText.
func zeroWidth(glyphs []pdf.Text) bool {
	for i := range glyphs {
		if glyphs[i].W != 0 {
			return false
		}
	}
	return len(glyphs) > 0
}

// tjSpace is the TJ displacement, in thousandths of an em, taken as a word break.
const tjSpace = 200

// streamText rebuilds page text from the text-showing operators of the
// content stream. Line moves start a new line and large TJ kerns become
// spaces.
func streamText(page pdf.Page) string {
	var (
		line  strings.Builder
		lines []string
		enc   pdf.TextEncoding
		lastY = math.NaN()
	)

	flush := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}
	show := func(v pdf.Value) {
		raw := v.RawString()
		if enc != nil {
			raw = enc.Decode(raw)
		}
		line.WriteString(strings.ReplaceAll(raw, "\x00", ""))
	}

	pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) == 2 {
				enc = page.Font(args[0].Name()).Encoder()
			}
		case "Td", "TD":
			switch {
			case len(args) != 2:
			case args[1].Float64() != 0:
				flush()
			case args[0].Float64() != 0:
				line.WriteByte(' ')
			}
		case "Tm":
			if len(args) == 6 {
				if y := args[5].Float64(); y != lastY {
					flush()
					lastY = y
				} else {
					line.WriteByte(' ')
				}
			}
		case "T*":
			flush()
		case "'":
			flush()
			if len(args) == 1 {
				show(args[0])
			}
		case "\"":
			flush()
			if len(args) == 3 {
				show(args[2])
			}
		case "Tj":
			if len(args) == 1 {
				show(args[0])
			}
		case "TJ":
			if len(args) != 1 {
				return
			}
			for i := 0; i < args[0].Len(); i++ {
				x := args[0].Index(i)
				if x.Kind() == pdf.String {
					show(x)
				} else if x.Float64() < -tjSpace {
					line.WriteByte(' ')
				}
			}
		}
	})
	flush()

	return strings.Join(lines, "\n")
}
