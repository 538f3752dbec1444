package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	data, err := EncodePNG(solid(w, h))
	require.NoError(t, err)
	return data
}

func TestScaleToWidth_KeepsAspect(t *testing.T) {
	out := ScaleToWidth(solid(400, 200), 100)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestScaleToWidth_MinimumHeight(t *testing.T) {
	out := ScaleToWidth(solid(1000, 1), 10)
	assert.Equal(t, 1, out.Bounds().Dy())
}

func TestDownscalePNG_Wider(t *testing.T) {
	data := pngBytes(t, 2048, 1024)

	out, err := DownscalePNG(data, 1024)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestDownscalePNG_NarrowUnchanged(t *testing.T) {
	data := pngBytes(t, 300, 300)

	out, err := DownscalePNG(data, 1024)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDownscalePNG_Garbage(t *testing.T) {
	_, err := DownscalePNG([]byte("not an image"), 100)
	assert.Error(t, err)
}

func TestToPNG_FromJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(20, 10), nil))

	out, err := ToPNG(buf.Bytes())
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}
