//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// TesseractConfig configures the Tesseract engines.
type TesseractConfig struct {
	Languages      []string
	PageSegMode    int
	TessdataPrefix string
}

// TesseractEngine is unavailable in builds without cgo.
type TesseractEngine struct {
	lines bool
}

// NewTesseract returns the plain-text Tesseract engine.
func NewTesseract(TesseractConfig) *TesseractEngine {
	return &TesseractEngine{}
}

// NewTesseractLines returns the line-level Tesseract engine.
func NewTesseractLines(TesseractConfig) *TesseractEngine {
	return &TesseractEngine{lines: true}
}

// Name returns the backend identifier.
func (e *TesseractEngine) Name() string {
	if e.lines {
		return BackendTesseractLines.String()
	}
	return BackendTesseract.String()
}

// Recognize always fails with ErrUnavailable.
func (e *TesseractEngine) Recognize(context.Context, image.Image) (Result, error) {
	return Result{}, ErrUnavailable
}

// TesseractVersion returns an empty string when Tesseract is not linked.
func TesseractVersion() string {
	return ""
}
