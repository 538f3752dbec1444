package driven

import (
	"context"
	"net/url"
	"strings"
)

// FetchedPage is the body of a successful GET.
type FetchedPage struct {
	// URL is the final URL after redirects.
	URL *url.URL

	// ContentType is the response media type.
	ContentType string

	Body []byte
}

// IsHTML reports whether the response is an HTML document.
func (p *FetchedPage) IsHTML() bool {
	return p != nil && strings.Contains(strings.ToLower(p.ContentType), "html")
}

// PageFetcher retrieves web resources for crawling.
type PageFetcher interface {
	// Fetch performs a GET. Non-success status codes are errors.
	Fetch(ctx context.Context, u *url.URL) (*FetchedPage, error)
}
