package api

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"

	"chefgpt/internal/recipe"
)

// maxImageDimension caps the longer edge of images sent to the model.
const maxImageDimension = 1500

// normalizeImage decodes the upload, downscales anything larger than
// maxImageDimension and re-encodes as JPEG. Undecodable bytes are a client
// error, not an upstream one.
func normalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid image: %v", recipe.ErrInvalidInput, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = resize.Thumbnail(maxImageDimension, maxImageDimension, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
