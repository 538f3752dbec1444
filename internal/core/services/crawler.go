package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Crawler implements the interface.
var _ driving.CrawlService = (*Crawler)(nil)

// Crawler builds an in-memory corpus from one site, breadth first.
// Pages are fetched one at a time.
type Crawler struct {
	fetcher   driven.PageFetcher
	embedder  driven.EmbeddingService
	captioner driven.ImageCaptioner
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       domain.CrawlerConfig
	retrieval domain.RetrievalConfig
	captions  bool
}

// NewCrawler creates a crawler. captioner and llm may be nil.
func NewCrawler(
	fetcher driven.PageFetcher,
	embedder driven.EmbeddingService,
	captioner driven.ImageCaptioner,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg domain.Config,
) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		embedder:  embedder,
		captioner: captioner,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg.Crawler,
		retrieval: cfg.Retrieval,
		captions:  cfg.Caption.ImageCaptions && captioner != nil,
	}
}

// Crawl builds a corpus from startURL and returns a session to ask it.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (driving.SiteSession, error) {
	corpus, err := c.BuildCorpus(ctx, startURL)
	if err != nil {
		return nil, err
	}
	return NewSiteSession(corpus, c.embedder, c.llm, c.prompts, c.retrieval), nil
}

// BuildCorpus crawls startURL, embeds every page and builds the IDF table.
func (c *Crawler) BuildCorpus(ctx context.Context, startURL string) (*Corpus, error) {
	start, err := url.Parse(strings.TrimSpace(startURL))
	if err != nil || (start.Scheme != "http" && start.Scheme != "https") || start.Host == "" {
		return nil, fmt.Errorf("%w: start URL %q", domain.ErrInvalidInput, startURL)
	}

	hosts := c.cfg.AllowedHosts
	if len(hosts) == 0 {
		hosts = []string{start.Hostname()}
	}
	budget := c.cfg.MaxPages
	if budget <= 0 {
		budget = domain.DefaultCrawlMaxPages
	}

	frontier := NewFrontier(hosts, budget)
	frontier.Push(start)
	if c.cfg.UseSitemap {
		c.seedFromSitemap(ctx, start, frontier)
	}

	var entries []domain.CorpusEntry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, ok := frontier.Pop()
		if !ok {
			break
		}
		entry, err := c.visit(ctx, u, frontier)
		if err != nil {
			logger.Warn("crawl: %v", err)
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	logger.Info("crawl: %d pages from %d visited URLs", len(entries), frontier.Visited())

	entries, err = c.embedEntries(ctx, entries)
	if err != nil {
		return nil, err
	}
	return NewCorpus(entries), nil
}

// seedFromSitemap enqueues allowed <loc> URLs from the site's root sitemap.
// A missing sitemap is logged and the crawl continues from the start URL.
func (c *Crawler) seedFromSitemap(ctx context.Context, start *url.URL, frontier *Frontier) {
	sitemap := &url.URL{Scheme: start.Scheme, Host: start.Host, Path: "/sitemap.xml"}
	page, err := c.fetcher.Fetch(ctx, sitemap)
	if err != nil {
		logger.Warn("crawl: %v", fmt.Errorf("%w: %s: %w", domain.ErrSitemapUnavailable, sitemap, err))
		return
	}
	added := 0
	for _, loc := range SitemapLocs(page.Body) {
		if u, err := Resolve(start, loc); err == nil && frontier.Push(u) {
			added++
		}
	}
	logger.Info("crawl: %d URLs from %s", added, sitemap)
}

// visit fetches one URL, enqueues its links and returns its corpus entry.
// A nil entry with a nil error means the page was skipped.
func (c *Crawler) visit(ctx context.Context, u *url.URL, frontier *Frontier) (*domain.CorpusEntry, error) {
	fetched, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFrontierFetch, u, err)
	}
	if !fetched.IsHTML() {
		logger.Debug("Skipping %s: content type %q", u, fetched.ContentType)
		return nil, nil
	}

	base := fetched.URL
	if base == nil {
		base = u
	}
	page, err := parseWebPage(fetched.Body, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	for _, link := range page.links {
		frontier.Push(link)
	}

	content := c.composeContent(ctx, u, page)
	if content == "" {
		logger.Debug("Skipping %s: empty content", u)
		return nil, nil
	}

	title := page.title
	if title == "" {
		title = u.String()
	}
	return &domain.CorpusEntry{URL: u.String(), Title: title, Content: content}, nil
}

// composeContent joins headings, main text and image descriptions.
func (c *Crawler) composeContent(ctx context.Context, u *url.URL, page *webPage) string {
	var b strings.Builder
	if len(page.headings) > 0 {
		b.WriteString(strings.Join(page.headings, " · "))
		b.WriteString("\n\n")
	}
	if page.text != "" {
		b.WriteString(page.text)
		b.WriteString("\n\n")
	}
	if c.cfg.IncludeImages && c.captions {
		b.WriteString(c.describeImages(ctx, u, page))
	}
	return strings.TrimSpace(b.String())
}

// describeImages captions up to CaptionMaxImages images of the page.
// Images that fail to download or caption are skipped.
func (c *Crawler) describeImages(ctx context.Context, u *url.URL, page *webPage) string {
	limit := c.cfg.CaptionMaxImages
	if limit <= 0 {
		limit = domain.DefaultCrawlMaxImages
	}
	hint := fmt.Sprintf("Side: %s. Beskriv bildet kort i kontekst av teksten.", u)
	if page.text != "" {
		hint += ` Tekst på siden (kontekst): "` + normalisers.Truncate(page.text, pageHintChars) + `"`
	}

	var lines []string
	for i, img := range page.images {
		if i >= limit || ctx.Err() != nil {
			break
		}
		fetched, err := c.fetcher.Fetch(ctx, img)
		if err != nil {
			logger.Debug("Image %s: %v", img, err)
			continue
		}
		caption := strings.TrimSpace(c.captioner.Describe(ctx, fetched.Body, u.Hostname(), hint))
		if caption == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", path.Base(img.Path), caption))
	}
	if len(lines) == 0 {
		return ""
	}
	return "### Bildebeskrivelser\n" + strings.Join(lines, "\n")
}

// embedEntries embeds every page. Pages whose embedding fails are dropped;
// when every page fails the crawl fails.
func (c *Crawler) embedEntries(ctx context.Context, entries []domain.CorpusEntry) ([]domain.CorpusEntry, error) {
	kept := entries[:0]
	var lastErr error
	for _, e := range entries {
		vec, err := c.embedder.Embed(ctx, e.Content)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logger.Warn("crawl: embed %s: %v", e.URL, err)
			continue
		}
		e.Embedding = vec
		kept = append(kept, e)
	}
	if len(kept) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, lastErr)
	}
	return kept, nil
}
