// Package odt provides an Extractor for OpenDocument text files, backed by docconv.
package odt

import (
	"context"
	"fmt"
	"os"

	"code.sajari.com/docconv"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles ODT documents.
type Extractor struct{}

// New creates a new ODT extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".odt"}
}

// Extract converts content.xml to normalised text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	body, _, err := docconv.ConvertODT(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}

	text := normalisers.Whitespace(body)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Title:  normalisers.FileTitle(path),
		Format: domain.FormatODT,
		Pages:  []domain.PageText{{Index: 0, Text: text}},
	}, nil
}
