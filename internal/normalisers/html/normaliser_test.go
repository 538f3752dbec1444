package html

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".html", ".htm"}, New().Extensions())
}

func TestExtract_Success(t *testing.T) {
	path := writeFile(t, "side.html",
		"<html><head><title>Test &amp; Page</title></head><body><p>Hello</p><p>World</p></body></html>")

	out, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Test & Page", out.Title)
	assert.Equal(t, domain.FormatHTML, out.Format)
	require.Len(t, out.Pages, 1)
	assert.Equal(t, "Hello World", out.Pages[0].Text)
	assert.False(t, out.Paged)
}

func TestExtract_TitleFallsBackToFileName(t *testing.T) {
	path := writeFile(t, "monteringsanvisning.htm", "<body>tekst</body>")

	out, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "monteringsanvisning", out.Title)
}

func TestExtract_EmptyContent(t *testing.T) {
	path := writeFile(t, "empty.html", "<html><script>var x = 1;</script></html>")

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "script content removed",
			in:   "<p>before</p><script>alert('x')</script><p>after</p>",
			want: "before after",
		},
		{
			name: "style and noscript removed",
			in:   "<style>p{color:red}</style>tekst<noscript>aktiver JS</noscript>",
			want: "tekst",
		},
		{
			name: "entities decoded",
			in:   "<b>R&oslash;r</b> &lt;50&nbsp;mm&gt;",
			want: "Rør <50 mm>",
		},
		{
			name: "comments removed",
			in:   "a<!-- hidden -->b",
			want: "a b",
		},
		{
			name: "whitespace normalised",
			in:   "<div>\n\n  line one\t\t</div>\n<div>line two</div>",
			want: "line one line two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestText_Selection(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<body><nav>Meny</nav><main><h1>Hylle</h1><svg><text>ikon</text></svg><p>Skru fast.</p></main></body>`))
	require.NoError(t, err)

	assert.Equal(t, "Hylle Skru fast.", Text(doc.Find("main")))
}

func TestExtract_HeadNotInText(t *testing.T) {
	path := writeFile(t, "side.html",
		`<html><head><title>Tittel</title><meta name="x" content="y"></head><body>Innhold</body></html>`)

	out, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Tittel", out.Title)
	assert.Equal(t, "Innhold", out.Pages[0].Text)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Hei verden", Title("<title>\n Hei   verden </title>"))
	assert.Equal(t, "", Title("<h1>no title</h1>"))
}
