package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"iter"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/imaging"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// Default rendering parameters.
const (
	DefaultDPI         = 110
	DefaultTargetWidth = 1280
)

// Rasterizer renders single PDF pages with pdftoppm.
type Rasterizer struct {
	runner      driven.CommandRunner
	dpi         int
	targetWidth int
}

// NewRasterizer creates a rasterizer. Zero values select the defaults.
func NewRasterizer(runner driven.CommandRunner, dpi, targetWidth int) *Rasterizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if targetWidth <= 0 {
		targetWidth = DefaultTargetWidth
	}
	return &Rasterizer{runner: runner, dpi: dpi, targetWidth: targetWidth}
}

// RenderPage renders the zero-based page and scales it to the target width.
func (r *Rasterizer) RenderPage(ctx context.Context, path string, page int) ([]byte, error) {
	if page < 0 {
		return nil, fmt.Errorf("render %s: negative page %d", path, page)
	}

	dir, err := os.MkdirTemp("", "kilde-render-*")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	defer os.RemoveAll(dir)

	n := strconv.Itoa(page + 1)
	prefix := filepath.Join(dir, "page")
	if _, err := r.runner.Run(ctx, "pdftoppm",
		"-png", "-r", strconv.Itoa(r.dpi), "-f", n, "-l", n, "-singlefile", path, prefix); err != nil {
		return nil, fmt.Errorf("render %s page %s: %w", path, n, err)
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("render %s page %s: %w", path, n, err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("render %s page %s: %w", path, n, err)
	}
	if img.Bounds().Dx() <= r.targetWidth {
		return data, nil
	}
	return imaging.EncodePNG(imaging.ScaleToWidth(img, r.targetWidth))
}

// Pages lazily renders pages [0, count). A page that fails is logged and
// skipped without ending the sequence.
func (r *Rasterizer) Pages(ctx context.Context, path string, count int) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i := 0; i < count; i++ {
			if ctx.Err() != nil {
				return
			}
			data, err := r.RenderPage(ctx, path, i)
			if err != nil {
				logger.Warn("render %s page %d: %v", filepath.Base(path), i+1, err)
				continue
			}
			if !yield(i, data) {
				return
			}
		}
	}
}
