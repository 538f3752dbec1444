package html

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// hiddenElements never contribute visible text.
const hiddenElements = "head, script, style, noscript, svg, template"

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract reads an HTML file and returns its visible text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrCorruptDocument, err)
	}

	title := documentTitle(doc)
	text := Text(doc.Selection)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}
	if title == "" {
		title = normalisers.FileTitle(path)
	}

	return &domain.Extraction{
		Title:  title,
		Format: domain.FormatHTML,
		Pages:  []domain.PageText{{Index: 0, Text: text}},
	}, nil
}

// Title returns the <title> text, or "" when absent.
func Title(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return documentTitle(doc)
}

func documentTitle(doc *goquery.Document) string {
	return normalisers.Whitespace(doc.Find("title").First().Text())
}

// StripHTML parses content and returns its normalised visible text.
func StripHTML(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return Text(doc.Selection)
}

// Text returns the visible text under sel with whitespace normalised.
// Hidden elements are removed from sel's document. Element boundaries
// separate words, so adjacent blocks do not run together.
func Text(sel *goquery.Selection) string {
	sel.Find(hiddenElements).Remove()

	var b strings.Builder
	writeText(&b, sel)
	return normalisers.Whitespace(strings.ToValidUTF8(b.String(), ""))
}

func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			b.WriteString(node.Text())
			b.WriteByte(' ')
		case "#comment":
		default:
			writeText(b, node)
		}
	})
}
