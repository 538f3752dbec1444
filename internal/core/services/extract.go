package services

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nordvik-labs/kilde/internal/normalisers"
	htmlnorm "github.com/nordvik-labs/kilde/internal/normalisers/html"
)

// maxHeadings is the number of distinct headings kept per page.
const maxHeadings = 5

// webPage is the readable content of one fetched HTML page.
type webPage struct {
	title    string
	headings []string
	text     string
	images   []*url.URL
	links    []*url.URL
	html     *goquery.Document
}

// parseWebPage extracts the title, up to five distinct h1-h3 headings, the
// main text and absolute image and link URLs. Text comes from <main> or
// <article> when present, else from the whole body, after script, style
// and noscript elements are removed.
func parseWebPage(body []byte, base *url.URL) (*webPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &webPage{
		title: normalisers.Whitespace(doc.Find("title").First().Text()),
		links: resolveAttr(doc.Selection, "a[href]", "href", base),
		html:  doc,
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find("script, style, noscript, svg, template").Remove()

	page.headings = headings(root)
	page.images = resolveAttr(root, "img[src]", "src", base)

	region := root.Find("main").First()
	if region.Length() == 0 {
		region = root.Find("article").First()
	}
	if region.Length() == 0 {
		region = root
	}
	page.text = htmlnorm.Text(region)
	return page, nil
}

// headings collects distinct h1, then h2, then h3 texts.
func headings(root *goquery.Selection) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range []string{"h1", "h2", "h3"} {
		root.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			h := normalisers.Whitespace(s.Text())
			if h == "" {
				return true
			}
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				out = append(out, h)
			}
			return len(out) < maxHeadings
		})
		if len(out) >= maxHeadings {
			break
		}
	}
	return out
}

// resolveAttr resolves attr of every element matching selector against base.
// Unresolvable values are dropped.
func resolveAttr(root *goquery.Selection, selector, attr string, base *url.URL) []*url.URL {
	var out []*url.URL
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		if u, err := Resolve(base, v); err == nil {
			out = append(out, u)
		}
	})
	return out
}

// pdfLinks returns up to limit distinct absolute links whose href mentions .pdf.
func pdfLinks(doc *goquery.Document, base *url.URL, limit int) []*url.URL {
	seen := make(map[string]struct{})
	var out []*url.URL
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if strings.HasPrefix(href, "#") || !strings.Contains(strings.ToLower(href), ".pdf") {
			return true
		}
		u, err := Resolve(base, href)
		if err != nil {
			return true
		}
		key := strings.ToLower(u.String())
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		out = append(out, u)
		return len(out) < limit
	})
	return out
}
