// Package preview renders the scaled-down image shown in the window.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Fit returns img scaled to fit within width x height, keeping its aspect
// ratio. Images that already fit are returned unscaled.
func Fit(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}
	return imaging.Fit(img, width, height, imaging.Lanczos)
}

// Render fits img into the box and encodes it as a PNG data URL.
func Render(img image.Image, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid preview size %dx%d", width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Fit(img, width, height)); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
