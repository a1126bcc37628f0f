package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, n.SupportedMIMETypes())
	assert.Nil(t, n.SupportedConnectorTypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Library &amp; Study Rooms</title><style>p { color: red }</style></head>
<body>
  <nav><a href="/">Home</a></nav>
  <h1>Opening hours</h1>
  <p>The library opens at <b>9am</b>.</p>
  <!-- staff only -->
  <script>alert("x")</script>
  <ul><li>Mon&ndash;Fri</li><li>Sat</li></ul>
</body>
</html>`

	raw := &domain.RawDocument{URI: "/site/library.html", MIMEType: "text/html", Content: []byte(page)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Library & Study Rooms", doc.Title)
	assert.Equal(t, "Home\nOpening hours\nThe library opens at 9am.\nMon–Fri\nSat", doc.Content)
	assert.Equal(t, "html", doc.Metadata["format"])
	assert.Equal(t, "library.html", doc.SourceLabel())
}

func TestNormalise_TitleFallback(t *testing.T) {
	raw := &domain.RawDocument{URI: "/site/study_guide.html", Content: []byte("<p>hello</p>")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "study guide", result.Document.Title)
	assert.Equal(t, "hello", result.Document.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"entities", "<p>a &lt; b &gt; c</p>", "a < b > c"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"collapses spaces", "<p>a   \t b</p>", "a b"},
		{"drops svg", "<div>x<svg><text>hidden</text></svg></div>", "x"},
		{"inline tags joined", "<span>in</span><em>line</em>", "inline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}
