package driven

import (
	"context"
	"iter"
)

// Rasterizer renders PDF pages to PNG images.
type Rasterizer interface {
	// RenderPage renders the zero-based page index of the PDF at path,
	// downsampled to the configured target width.
	RenderPage(ctx context.Context, path string, page int) ([]byte, error)

	// Pages lazily renders pages [0, count) in order. Pages that fail to
	// render are skipped; the sequence stops early if ctx is cancelled.
	Pages(ctx context.Context, path string, count int) iter.Seq2[int, []byte]
}
