package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(40 * x), uint8(100 * y), 7, 255})
		}
	}
	return img
}

func TestSaveLoadLossless(t *testing.T) {
	src := testImage()
	for _, name := range []string{"out.png", "out.bmp", "out.tiff", "out.PNG", "out"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, src))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), got.Bounds())
			assert.Equal(t, src.Pix, got.Pix)
		})
	}
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, Save(path, testImage()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
}

func TestSaveWebPUnsupported(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.webp"), testImage())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecodeFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, testImage().Pix, img.Pix)

	_, _, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestToRGBA(t *testing.T) {
	src := testImage()
	assert.Same(t, src, ToRGBA(src))

	sub := src.SubImage(image.Rect(1, 1, 3, 2))
	got := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 2, 1), got.Bounds())
	assert.Equal(t, src.RGBAAt(1, 1), got.RGBAAt(0, 0))

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 200})
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, ToRGBA(gray).RGBAAt(0, 0))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
