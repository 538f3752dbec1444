package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/imaging"
)

// renderRunner fakes pdftoppm by writing a PNG to the requested prefix.
type renderRunner struct {
	width, height int
	failPages     map[int]bool
	rendered      []int
}

func (r *renderRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	if name != "pdftoppm" {
		return nil, errors.New("unexpected tool " + name)
	}
	var page int
	for i, a := range args {
		if a == "-f" {
			page, _ = strconv.Atoi(args[i+1])
		}
	}
	r.rendered = append(r.rendered, page)
	if r.failPages[page] {
		return nil, errors.New("render failed")
	}
	data, err := imaging.EncodePNG(image.NewRGBA(image.Rect(0, 0, r.width, r.height)))
	if err != nil {
		return nil, err
	}
	prefix := args[len(args)-1]
	return nil, os.WriteFile(prefix+".png", data, 0600)
}

func TestRenderPage_Downsamples(t *testing.T) {
	runner := &renderRunner{width: 2560, height: 3620}
	r := NewRasterizer(runner, 0, 1280)

	data, err := r.RenderPage(context.Background(), "doc.pdf", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 1810, img.Bounds().Dy())
	assert.Equal(t, []int{1}, runner.rendered)
}

func TestRenderPage_NarrowKept(t *testing.T) {
	runner := &renderRunner{width: 600, height: 800}
	r := NewRasterizer(runner, 72, 1280)

	data, err := r.RenderPage(context.Background(), "doc.pdf", 2)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, []int{3}, runner.rendered)
}

func TestRenderPage_Failure(t *testing.T) {
	runner := &renderRunner{width: 10, height: 10, failPages: map[int]bool{1: true}}

	_, err := NewRasterizer(runner, 0, 0).RenderPage(context.Background(), "doc.pdf", 0)
	assert.Error(t, err)
}

func TestPages_SkipsFailedPages(t *testing.T) {
	runner := &renderRunner{width: 10, height: 10, failPages: map[int]bool{2: true}}
	r := NewRasterizer(runner, 0, 0)

	var got []int
	for i, data := range r.Pages(context.Background(), "doc.pdf", 3) {
		assert.NotEmpty(t, data)
		got = append(got, i)
	}

	assert.Equal(t, []int{0, 2}, got)
}

func TestPages_StopsEarly(t *testing.T) {
	runner := &renderRunner{width: 10, height: 10}
	r := NewRasterizer(runner, 0, 0)

	for i := range r.Pages(context.Background(), "doc.pdf", 5) {
		if i == 1 {
			break
		}
	}

	assert.Equal(t, []int{1, 2}, runner.rendered)
}
