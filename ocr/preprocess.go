package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions configures the transforms applied before recognition.
type PreprocessOptions struct {
	Grayscale bool    // Convert to single-channel grayscale
	Scale     float64 // Upscale factor; values <= 1 leave the size unchanged
	Threshold uint8   // Binarize at this level; 0 disables
}

// Enabled reports whether any transform is configured.
func (o PreprocessOptions) Enabled() bool {
	return o.Grayscale || o.Scale > 1 || o.Threshold > 0
}

// Preprocess applies the configured transforms to img and returns the result.
// The input image is never modified.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	out := img

	if opts.Scale > 1 {
		b := out.Bounds()
		w := int(float64(b.Dx()) * opts.Scale)
		out = imaging.Resize(out, w, 0, imaging.Lanczos)
	}

	switch {
	case opts.Threshold > 0:
		// Threshold already produces a single-channel image.
		out = segment.Threshold(out, opts.Threshold)
	case opts.Grayscale:
		out = effect.Grayscale(out)
	}

	return out
}
