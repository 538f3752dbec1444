// Package docx provides an Extractor for Word (DOCX) documents.
// Text is read from word/document.xml with paragraph boundaries kept as
// line breaks before whitespace normalisation.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract opens the archive and converts the main document part to text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}
	defer reader.Close()

	part, err := readPart(&reader.Reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}

	text, err := parseDocumentXML(part)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Title:  extractTitle(&reader.Reader, path),
		Format: domain.FormatDOCX,
		Pages:  []domain.PageText{{Index: 0, Text: text}},
	}, nil
}

var errPartMissing = errors.New("part missing")

// readPart returns the bytes of a named archive entry.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// parseDocumentXML walks the WordprocessingML tokens. Text runs are
// collected, paragraphs and breaks become newlines and tabs become spaces.
// Entities are decoded by the XML decoder.
func parseDocumentXML(content []byte) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(content)))
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte(' ')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return normalisers.Whitespace(b.String()), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads docProps/core.xml or falls back to the file name.
func extractTitle(reader *zip.Reader, path string) string {
	if content, err := readPart(reader, corePart); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			if title := normalisers.Whitespace(core.Title); title != "" {
				return title
			}
		}
	}
	return normalisers.FileTitle(path)
}
