package driving

import "context"

// SiteIndexReport summarises a sitemap indexing run.
type SiteIndexReport struct {
	OK     int
	Failed int
	PDFs   int
}

// SiteIndexService indexes the pages listed in a sitemap into the persistent store.
type SiteIndexService interface {
	Index(ctx context.Context, startURL, site string) (*SiteIndexReport, error)
}

// SiteSession is an in-memory corpus built from one crawl.
type SiteSession interface {
	// Ask answers a question from the crawled pages.
	Ask(ctx context.Context, question string) (string, error)

	// Pages returns the number of pages in the corpus.
	Pages() int
}

// CrawlService crawls a site into an in-memory session.
type CrawlService interface {
	Crawl(ctx context.Context, startURL string) (SiteSession, error)
}
