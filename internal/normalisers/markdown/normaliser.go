// Package markdown provides an Extractor for Markdown files. Formatting is
// stripped so only the prose is embedded and ranked.
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract reads a Markdown file. The first level-one heading is the title.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.ToValidUTF8(string(raw), "�")
	text := normalisers.Whitespace(Strip(content))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	title := Title(content)
	if title == "" {
		title = normalisers.FileTitle(path)
	}

	return &domain.Extraction{
		Title:  title,
		Format: domain.FormatMarkdown,
		Pages:  []domain.PageText{{Index: 0, Text: text}},
	}, nil
}

// Title returns the text of the first "# " heading, or "".
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

var (
	codeFence    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	imageRef     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkRef      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingMark  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(^|[\s(])(\*\*|__|\*|_)([^*_\n]+?)(\*\*|__|\*|_)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	horizontal   = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarker   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedItem = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	tableRule    = regexp.MustCompile(`(?m)^\|?[\s:|-]+\|[\s:|-]*$`)
)

// Strip removes Markdown syntax and keeps the readable text. Code blocks
// are dropped; image alt text and link text are kept.
func Strip(content string) string {
	content = codeFence.ReplaceAllString(content, " ")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = imageRef.ReplaceAllString(content, "$1")
	content = linkRef.ReplaceAllString(content, "$1")
	content = headingMark.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$1$3")
	content = blockquote.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = tableRule.ReplaceAllString(content, "")
	content = listMarker.ReplaceAllString(content, "")
	content = numberedItem.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "|", " ")
	return content
}
