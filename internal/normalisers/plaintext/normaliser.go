// Package plaintext provides an Extractor for plain text files.
// Content is passed through with whitespace normalised.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// utf8BOM is stripped from the start of files written by some editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

// Extract reads the file and normalises its whitespace.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return nil, fmt.Errorf("%s: binary content: %w", path, domain.ErrCorruptDocument)
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	text := normalisers.Whitespace(strings.ToValidUTF8(string(raw), "�"))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Title:  normalisers.FileTitle(path),
		Format: domain.FormatPlainText,
		Pages:  []domain.PageText{{Index: 0, Text: text}},
	}, nil
}
