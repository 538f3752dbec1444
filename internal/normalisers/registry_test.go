package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

type stubExtractor struct {
	exts []string
	name string
}

func (s stubExtractor) Extensions() []string { return s.exts }

func (s stubExtractor) Extract(_ context.Context, _ string) (*domain.Extraction, error) {
	return &domain.Extraction{Title: s.name}, nil
}

func TestRegistry_For(t *testing.T) {
	r := NewRegistry(
		stubExtractor{exts: []string{".txt", ".md"}, name: "text"},
		stubExtractor{exts: []string{".pdf"}, name: "pdf"},
	)

	e, err := r.For("/docs/Manual.PDF")
	require.NoError(t, err)
	out, _ := e.Extract(context.Background(), "")
	assert.Equal(t, "pdf", out.Title)

	_, err = r.For("image.png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	assert.Equal(t, []string{".md", ".pdf", ".txt"}, r.Extensions())
}

func TestRegistry_LaterWins(t *testing.T) {
	r := NewRegistry(
		stubExtractor{exts: []string{".html"}, name: "first"},
		stubExtractor{exts: []string{".html"}, name: "second"},
	)

	e, err := r.For("index.html")
	require.NoError(t, err)
	out, _ := e.Extract(context.Background(), "")
	assert.Equal(t, "second", out.Title)
}
