package services

import (
	"html"
	"regexp"
	"strings"
)

var locPattern = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)

// SitemapLocs returns the distinct <loc> values of a sitemap in document
// order. Duplicates are detected case-insensitively.
func SitemapLocs(body []byte) []string {
	matches := locPattern.FindAllSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	locs := make([]string, 0, len(matches))
	for _, m := range matches {
		loc := strings.TrimSuffix(strings.TrimPrefix(string(m[1]), "<![CDATA["), "]]>")
		loc = strings.TrimSpace(html.UnescapeString(loc))
		if loc == "" {
			continue
		}
		key := strings.ToLower(loc)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		locs = append(locs, loc)
	}
	return locs
}
