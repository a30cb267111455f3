// Package ocr recognizes text in images through interchangeable backends.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoText is returned when recognition yields only whitespace.
	ErrNoText = errors.New("no text found")
	// ErrUnavailable is returned by backends that are not built or configured.
	ErrUnavailable = errors.New("ocr backend unavailable")
)

// Backend identifies a recognition strategy.
type Backend int

const (
	// BackendTesseract reads the whole page as plain text.
	BackendTesseract Backend = iota
	// BackendTesseractLines reads text line by line with positions and confidence.
	BackendTesseractLines
	// BackendVision asks a vision language model to transcribe the image.
	BackendVision
)

var backendNames = map[Backend]string{
	BackendTesseract:      "tesseract",
	BackendTesseractLines: "tesseract-lines",
	BackendVision:         "vision",
}

var backendLabels = map[Backend]string{
	BackendTesseract:      "Tesseract",
	BackendTesseractLines: "Tesseract (lines)",
	BackendVision:         "Vision",
}

// String returns the configuration name of b.
func (b Backend) String() string {
	if s, ok := backendNames[b]; ok {
		return s
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// Label returns the human-readable name of b.
func (b Backend) Label() string {
	if s, ok := backendLabels[b]; ok {
		return s
	}
	return b.String()
}

// ParseBackend maps a configuration name to a Backend.
func ParseBackend(name string) (Backend, error) {
	for b, s := range backendNames {
		if s == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown ocr backend: %q", name)
}

// Line is one recognized line of text.
type Line struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0-1, 0 when not reported
	Bounds     image.Rectangle `json:"bounds"`
}

// Result is the outcome of one recognition pass.
type Result struct {
	Text  string `json:"text"`
	Lines []Line `json:"lines,omitempty"`
}

// Empty reports whether the result holds only whitespace.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Engine recognizes text in an image.
type Engine interface {
	// Name returns the backend identifier.
	Name() string

	// Recognize returns the text found in img.
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

// ResultFromLines joins every line text with newlines in the given order.
// Blank lines are kept so the layout reported by the engine survives.
func ResultFromLines(lines []Line) Result {
	texts := make([]string, len(lines))
	kept := make([]Line, len(lines))
	for i, l := range lines {
		l.Text = strings.TrimRight(l.Text, "\r\n")
		texts[i] = l.Text
		kept[i] = l
	}
	return Result{Text: strings.Join(texts, "\n"), Lines: kept}
}

// Normalize returns text in Unicode NFC form.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────────────────────────────────────

// Registry holds the engines available to the application.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[Backend]Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[Backend]Engine)}
}

// Register adds or replaces the engine for b.
func (r *Registry) Register(b Backend, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[b] = e
}

// Unregister removes the engine for b.
func (r *Registry) Unregister(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, b)
}

// Get returns the engine for b.
func (r *Registry) Get(b Backend) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[b]
	return e, ok
}

// Has reports whether an engine is registered for b.
func (r *Registry) Has(b Backend) bool {
	_, ok := r.Get(b)
	return ok
}
