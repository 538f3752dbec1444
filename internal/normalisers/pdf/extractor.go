package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// Extractor reads PDF text page by page with pdftotext.
type Extractor struct {
	runner driven.CommandRunner
}

// New creates an extractor that runs the installed pdftotext.
func New() *Extractor {
	return NewWithRunner(ExecRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns one PageText per page, in page order. Pages without
// extractable text are kept with empty Text so that they can still be
// rendered and captioned.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Extraction, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}

	pages := SplitPages(string(out))
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Title:  normalisers.FileTitle(path),
		Format: domain.FormatPDF,
		Pages:  pages,
		Paged:  true,
	}, nil
}

// SplitPages splits pdftotext output on form feeds. pdftotext terminates
// every page, including the last, with a form feed.
func SplitPages(out string) []domain.PageText {
	if strings.TrimSpace(out) == "" && !strings.Contains(out, pageBreak) {
		return nil
	}
	raw := strings.Split(out, pageBreak)
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}

	pages := make([]domain.PageText, len(raw))
	for i, text := range raw {
		pages[i] = domain.PageText{Index: i, Text: normalisers.Whitespace(text)}
	}
	return pages
}
