package driven

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// Extractor turns a file into normalised text.
// Each extractor handles a fixed set of file extensions.
type Extractor interface {
	// Extensions returns the lower-case extensions handled, including the dot.
	Extensions() []string

	// Extract reads the file at path.
	// Returns ErrCorruptDocument when the file cannot be parsed and
	// ErrEmptyContent when no text could be extracted.
	Extract(ctx context.Context, path string) (*domain.Extraction, error)
}

// ExtractorRegistry selects an extractor by file extension.
type ExtractorRegistry interface {
	// For returns the extractor for path, or ErrUnsupportedFormat.
	For(path string) (Extractor, error)
}

// CommandRunner executes an external program and returns its standard output.
// It isolates tools such as pdftotext and pdftoppm for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
