package domain

import "strings"

// Document is a unit of retrievable content.
// It is the record written to a persistent search store.
type Document struct {
	// ID is the store identity. It is derived from SourcePath so that
	// re-indexing the same file or URL overwrites the previous record.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the normalised text, possibly with per-page and
	// per-caption markers.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Site is an optional scope tag used as a query filter.
	Site string

	// SourcePath is the file path or URL the content came from.
	SourcePath string

	// Page is the PDF page number used for deep links. Nil when the
	// document is not tied to a single page.
	Page *int
}

// HasContent reports whether the document carries non-whitespace content.
func (d Document) HasContent() bool {
	return strings.TrimSpace(d.Content) != ""
}

// PageText is one extracted text block of a paged document.
// It is never persisted.
type PageText struct {
	// Index is the zero-based page index.
	Index int

	// Text is the normalised page text. May be empty.
	Text string
}

// Number returns the one-based page number.
func (p PageText) Number() int {
	return p.Index + 1
}

// Format identifies the source format of an extraction.
type Format string

// Supported formats.
const (
	FormatPDF       Format = "pdf"
	FormatDOCX      Format = "docx"
	FormatODT       Format = "odt"
	FormatHTML      Format = "html"
	FormatPlainText Format = "text"
	FormatMarkdown  Format = "markdown"
	FormatEmail     Format = "eml"
)

// Extraction is the output of a format extractor.
type Extraction struct {
	// Title is the document title, usually the file name without extension.
	Title string

	// Format is the detected source format.
	Format Format

	// Pages holds the text blocks in order. Non-paged formats have exactly one.
	Pages []PageText

	// Paged is true when Pages map to physical pages (PDF).
	Paged bool
}

// Text joins all page texts with blank lines between them.
func (e *Extraction) Text() string {
	parts := make([]string, 0, len(e.Pages))
	for _, p := range e.Pages {
		if strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// CorpusEntry is a crawled page held in memory for a single
// crawl-and-answer session.
type CorpusEntry struct {
	URL       string
	Title     string
	Content   string
	Embedding []float32
}
