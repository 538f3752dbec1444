package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// rejectedSchemes are link prefixes that never lead to a crawlable page.
var rejectedSchemes = []string{"mailto:", "tel:", "data:", "javascript:"}

// Frontier is a breadth-first queue of crawl targets. Every URL is
// enqueued at most once per normalised key, and at most budget URLs are
// handed out.
type Frontier struct {
	queue   []*url.URL
	queued  map[string]struct{}
	allowed map[string]struct{}
	budget  int
	popped  int
}

// NewFrontier creates a frontier restricted to allowedHosts.
// A budget of zero or less means no limit.
func NewFrontier(allowedHosts []string, budget int) *Frontier {
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed[h] = struct{}{}
		}
	}
	return &Frontier{
		queued:  make(map[string]struct{}),
		allowed: allowed,
		budget:  budget,
	}
}

// Push enqueues u when it is http(s), its host is allowed and its key has
// not been queued before. It reports whether u was enqueued.
func (f *Frontier) Push(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") || !f.Allowed(u) {
		return false
	}
	key := NormalizeKey(u)
	if _, ok := f.queued[key]; ok {
		return false
	}
	f.queued[key] = struct{}{}

	clean := *u
	clean.Fragment = ""
	clean.RawFragment = ""
	f.queue = append(f.queue, &clean)
	return true
}

// Pop dequeues the oldest URL. It returns false when the queue is empty or
// the budget is spent.
func (f *Frontier) Pop() (*url.URL, bool) {
	if len(f.queue) == 0 || f.Exhausted() {
		return nil, false
	}
	u := f.queue[0]
	f.queue[0] = nil
	f.queue = f.queue[1:]
	f.popped++
	return u, true
}

// Exhausted reports whether the page budget has been used up.
func (f *Frontier) Exhausted() bool {
	return f.budget > 0 && f.popped >= f.budget
}

// Len returns the number of queued, not yet visited URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Visited returns the number of URLs handed out by Pop.
func (f *Frontier) Visited() int {
	return f.popped
}

// Allowed reports whether u's host is in the allow-list.
func (f *Frontier) Allowed(u *url.URL) bool {
	_, ok := f.allowed[strings.ToLower(u.Hostname())]
	return ok
}

// NormalizeKey returns the dedup key for u: scheme, host and path with the
// query, fragment and trailing slashes dropped. Keys compare case-insensitively.
func NormalizeKey(u *url.URL) string {
	path := strings.TrimRight(u.EscapedPath(), "/")
	return strings.ToLower(u.Scheme + "://" + u.Host + path)
}

// Resolve resolves href against base and strips the fragment. mailto:,
// tel:, data: and javascript: links and non-http(s) results are rejected.
func Resolve(base *url.URL, href string) (*url.URL, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, fmt.Errorf("%w: empty link", domain.ErrInvalidInput)
	}
	lower := strings.ToLower(href)
	for _, prefix := range rejectedSchemes {
		if strings.HasPrefix(lower, prefix) {
			return nil, fmt.Errorf("%w: %s link", domain.ErrInvalidInput, strings.TrimSuffix(prefix, ":"))
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: not an http(s) link: %s", domain.ErrInvalidInput, href)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}
