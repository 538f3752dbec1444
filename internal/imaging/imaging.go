// Package imaging resizes raster images for rendering and captioning.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for crawled images
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ScaleToWidth resizes img to width pixels, keeping the aspect ratio.
// Heights never drop below one pixel.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dx() == width {
		return img
	}
	height := max(1, int(float64(b.Dy())*float64(width)/float64(b.Dx())+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// DownscalePNG decodes data and, when it is wider than maxWidth, returns a
// PNG scaled down to maxWidth. Narrower images are returned unchanged.
// The input may be any registered format; the output is always PNG when
// scaling happened.
func DownscalePNG(data []byte, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return data, nil
	}
	return EncodePNG(ScaleToWidth(img, maxWidth))
}

// ToPNG re-encodes any registered image format as PNG.
func ToPNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		return data, nil
	}
	return EncodePNG(img)
}

// EncodePNG encodes img with default compression.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
