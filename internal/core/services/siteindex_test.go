package services

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

const siteSitemap = `<urlset>
<url><loc>https://x.com/produkter</loc></url>
<url><loc>https://x.com/borte</loc></url>
<url><loc>https://x.com/tom</loc></url>
</urlset>`

const productsPage = `<html><head><title>Produkter | Hyllebutikken</title></head><body>
<h1>Produkter</h1><p>Vegghylle i eik.</p>
<a href="/docs/vegghylle.pdf">Monteringsanvisning (PDF)</a>
<a href="/docs/vegghylle.pdf">Samme PDF</a>
<a href="#side.pdf">Anker</a>
<a href="/docs/mangler.pdf">Mangler</a>
</body></html>`

func newSiteIndexFixture(t *testing.T) (*SiteIndexer, *indexerFixture, *fakeFetcher) {
	f := newIndexerFixture(nil)
	fetcher := newFakeFetcher()
	fetcher.add("https://x.com/sitemap.xml", "application/xml", []byte(siteSitemap))
	fetcher.html("https://x.com/produkter", productsPage)
	fetcher.html("https://x.com/tom", "<html><body>  </body></html>")
	fetcher.add("https://x.com/docs/vegghylle.pdf", "application/pdf", []byte("%PDF-1.4"))
	return NewSiteIndexer(fetcher, f.ix, domain.DefaultConfig().Crawler), f, fetcher
}

func TestSiteIndexer_Index(t *testing.T) {
	s, f, fetcher := newSiteIndexFixture(t)

	report, err := s.Index(context.Background(), "https://x.com/", "butikk")
	require.NoError(t, err)

	assert.Equal(t, 1, report.OK)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.PDFs)
	assert.Equal(t, 1, fetcher.calls["https://x.com/docs/vegghylle.pdf"])

	docs := f.store.bySource()
	require.Len(t, docs, 2)

	pdf, page := docs[0], docs[1]
	assert.Equal(t, "https://x.com/docs/vegghylle.pdf", pdf.SourcePath)
	assert.Equal(t, DocumentID("https://x.com/docs/vegghylle.pdf"), pdf.ID)
	assert.Equal(t, "vegghylle", pdf.Title)
	assert.Equal(t, "butikk", pdf.Site)
	assert.Contains(t, pdf.Content, "[Side 1 – tekst]\nstandard pdf tekst")
	assert.Contains(t, pdf.Content, "[Side 1 – bilde/figur]")

	assert.Equal(t, "https://x.com/produkter", page.SourcePath)
	assert.Equal(t, DocumentID("https://x.com/produkter"), page.ID)
	assert.Equal(t, "Produkter | Hyllebutikken", page.Title)
	assert.Contains(t, page.Content, "Vegghylle i eik.")
	assert.Equal(t, "butikk", page.Site)
}

func TestSiteIndexer_MaxPages(t *testing.T) {
	f := newIndexerFixture(nil)
	fetcher := newFakeFetcher()
	fetcher.add("https://x.com/sitemap.xml", "application/xml", []byte(siteSitemap))
	fetcher.html("https://x.com/produkter", productsPage)

	cfg := domain.DefaultConfig().Crawler
	cfg.SiteIndexPages = 1
	report, err := NewSiteIndexer(fetcher, f.ix, cfg).Index(context.Background(), "https://x.com", "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.OK)
	assert.Zero(t, report.Failed)
	assert.Zero(t, fetcher.calls["https://x.com/borte"])
}

func TestSiteIndexer_MissingSitemap(t *testing.T) {
	f := newIndexerFixture(nil)
	s := NewSiteIndexer(newFakeFetcher(), f.ix, domain.DefaultConfig().Crawler)

	_, err := s.Index(context.Background(), "https://x.com", "")
	assert.ErrorIs(t, err, domain.ErrSitemapUnavailable)
}

func TestSiteIndexer_InvalidStartURL(t *testing.T) {
	s, _, _ := newSiteIndexFixture(t)

	_, err := s.Index(context.Background(), "x.com", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPDFTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://x.com/docs/hylle-200.pdf", "hylle-200"},
		{"https://x.com/", defaultPDFTitle},
		{"https://x.com", defaultPDFTitle},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, pdfTitle(u), tt.raw)
	}
}

func TestBootstrap(t *testing.T) {
	store := newFakeStore()

	require.NoError(t, Bootstrap(context.Background(), store, &fakeEmbedder{}, false))
	assert.Equal(t, 1, store.ensured)
	assert.Zero(t, store.deleted)

	require.NoError(t, Bootstrap(context.Background(), store, &fakeEmbedder{}, true))
	assert.Equal(t, 2, store.ensured)
	assert.Equal(t, 1, store.deleted)

	assert.ErrorIs(t, Bootstrap(context.Background(), nil, nil, false), domain.ErrStoreUnavailable)
}

func TestDocumentID(t *testing.T) {
	a := DocumentID("https://x.com/a")
	assert.Equal(t, a, DocumentID("https://x.com/a"))
	assert.NotEqual(t, a, DocumentID("https://x.com/b"))
	assert.Len(t, a, 36)
}
