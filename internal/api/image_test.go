package api

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefgpt/internal/recipe"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	out, err := normalizeImage(encodePNG(t, 8, 8))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestNormalizeImage_Downscales(t *testing.T) {
	out, err := normalizeImage(encodePNG(t, 1600, 40))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), maxImageDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), maxImageDimension)
}

func TestNormalizeImage_NotAnImage(t *testing.T) {
	_, err := normalizeImage([]byte("not an image"))
	assert.ErrorIs(t, err, recipe.ErrInvalidInput)
}
