//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig configures the Tesseract engines.
type TesseractConfig struct {
	Languages      []string
	PageSegMode    int // 0 keeps the library default
	TessdataPrefix string
}

// TesseractEngine recognizes text with a local Tesseract installation.
// A new client is created for every call.
type TesseractEngine struct {
	cfg           TesseractConfig
	lines         bool
	clientFactory func() *gosseract.Client
}

// NewTesseract returns the plain-text Tesseract engine.
func NewTesseract(cfg TesseractConfig) *TesseractEngine {
	return &TesseractEngine{cfg: cfg, clientFactory: gosseract.NewClient}
}

// NewTesseractLines returns the engine that reads text line by line and
// keeps per-line bounds and confidence.
func NewTesseractLines(cfg TesseractConfig) *TesseractEngine {
	return &TesseractEngine{cfg: cfg, lines: true, clientFactory: gosseract.NewClient}
}

// Name returns the backend identifier.
func (e *TesseractEngine) Name() string {
	if e.lines {
		return BackendTesseractLines.String()
	}
	return BackendTesseract.String()
}

// Recognize performs OCR on img.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := EncodePNG(img)
	if err != nil {
		return Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return Result{}, err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	if e.lines {
		boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
		if err != nil {
			return Result{}, fmt.Errorf("get text lines: %w", err)
		}
		return ResultFromLines(linesFromBoxes(boxes)), nil
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}
	return Result{Text: text}, nil
}

func (e *TesseractEngine) configure(c *gosseract.Client) error {
	if e.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataPrefix); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	if e.cfg.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
			return fmt.Errorf("set page seg mode: %w", err)
		}
	}
	return nil
}

// linesFromBoxes converts text-line boxes, keeping engine order.
// Tesseract reports confidence as a percentage.
func linesFromBoxes(boxes []gosseract.BoundingBox) []Line {
	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, Line{
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence / 100.0,
			Bounds:     b.Box,
		})
	}
	return lines
}

// TesseractVersion returns the linked Tesseract version.
func TesseractVersion() string {
	return gosseract.Version()
}
