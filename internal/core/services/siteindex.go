package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
	htmlnorm "github.com/nordvik-labs/kilde/internal/normalisers/html"
)

// Ensure SiteIndexer implements the interface.
var _ driving.SiteIndexService = (*SiteIndexer)(nil)

const (
	// maxPDFsPerPage bounds the linked PDFs indexed from one page.
	maxPDFsPerPage = 20

	// defaultPDFTitle names a PDF whose URL has no usable file name.
	defaultPDFTitle = "Monteringsanvisning"
)

// SiteIndexer indexes the pages listed in a site's sitemap, and the PDFs
// they link to, into the persistent store. Every document is keyed by URL.
type SiteIndexer struct {
	fetcher  driven.PageFetcher
	files    *FileIndexer
	maxPages int
}

// NewSiteIndexer creates a site indexer. Documents are embedded and
// written through files, which also extracts downloaded PDFs.
func NewSiteIndexer(fetcher driven.PageFetcher, files *FileIndexer, cfg domain.CrawlerConfig) *SiteIndexer {
	maxPages := cfg.SiteIndexPages
	if maxPages <= 0 {
		maxPages = domain.DefaultSiteIndexPages
	}
	return &SiteIndexer{fetcher: fetcher, files: files, maxPages: maxPages}
}

// Index reads <startURL>/sitemap.xml and indexes each listed page.
// Without a sitemap there is nothing to index and an error is returned.
func (s *SiteIndexer) Index(ctx context.Context, startURL, site string) (*driving.SiteIndexReport, error) {
	sitemap, err := url.Parse(strings.TrimRight(strings.TrimSpace(startURL), "/") + "/sitemap.xml")
	if err != nil || (sitemap.Scheme != "http" && sitemap.Scheme != "https") {
		return nil, fmt.Errorf("%w: start URL %q", domain.ErrInvalidInput, startURL)
	}

	logger.Info("siteindex: fetching %s", sitemap)
	page, err := s.fetcher.Fetch(ctx, sitemap)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSitemapUnavailable, sitemap, err)
	}
	locs := SitemapLocs(page.Body)
	if len(locs) > s.maxPages {
		locs = locs[:s.maxPages]
	}
	logger.Info("siteindex: %d URLs in sitemap", len(locs))

	report := &driving.SiteIndexReport{}
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := s.indexPage(ctx, loc, site, report)
		switch {
		case err == nil:
			report.OK++
		case errors.Is(err, domain.ErrEmptyContent):
			logger.Warn("siteindex: %s: empty content", loc)
		default:
			report.Failed++
			logger.Warn("siteindex: %s: %v", loc, err)
		}
	}
	logger.Info("siteindex: done, ok=%d failed=%d pdfs=%d", report.OK, report.Failed, report.PDFs)
	return report, nil
}

// indexPage indexes one page and the PDFs it links to.
func (s *SiteIndexer) indexPage(ctx context.Context, loc, site string, report *driving.SiteIndexReport) error {
	u, err := url.Parse(loc)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	fetched, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFrontierFetch, err)
	}

	body := string(fetched.Body)
	text := htmlnorm.StripHTML(body)
	if text == "" {
		return domain.ErrEmptyContent
	}
	title := htmlnorm.Title(body)
	if title == "" {
		title = loc
	}

	base := fetched.URL
	if base == nil {
		base = u
	}
	if page, err := parseWebPage(fetched.Body, base); err == nil {
		for _, pdf := range pdfLinks(page.html, base, maxPDFsPerPage) {
			if err := s.indexPDF(ctx, pdf, site); err != nil {
				logger.Warn("siteindex: PDF %s: %v", pdf, err)
				continue
			}
			report.PDFs++
		}
	}

	return s.files.write(ctx, domain.Document{
		ID:         DocumentID(loc),
		Title:      title,
		Content:    text,
		Site:       site,
		SourcePath: loc,
	})
}

// indexPDF downloads a linked PDF to a temporary file and ingests it under its URL.
func (s *SiteIndexer) indexPDF(ctx context.Context, u *url.URL, site string) error {
	fetched, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFrontierFetch, err)
	}

	tmp, err := os.CreateTemp("", "kilde-*.pdf")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(fetched.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return s.files.ingest(ctx, ingestTarget{
		path:       tmp.Name(),
		sourcePath: u.String(),
		title:      pdfTitle(u),
		site:       site,
	})
}

// pdfTitle is the file name of u without extension.
func pdfTitle(u *url.URL) string {
	name := path.Base(u.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return defaultPDFTitle
	}
	return name
}
