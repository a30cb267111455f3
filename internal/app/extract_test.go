package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"go.aimuz.me/snaptext/cache"
	"go.aimuz.me/snaptext/ocr"
)

// mockEngine implements ocr.Engine for testing.
type mockEngine struct {
	name  string
	text  string
	err   error
	calls atomic.Int32

	// When block is set, Recognize waits for it or for ctx.
	block chan struct{}
}

func (m *mockEngine) Name() string { return m.name }

func (m *mockEngine) Recognize(ctx context.Context, _ image.Image) (ocr.Result, error) {
	m.calls.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ocr.Result{}, ctx.Err()
		}
	}
	if m.err != nil {
		return ocr.Result{}, m.err
	}
	return ocr.Result{Text: m.text}, nil
}

// recordingEngine remembers the image it was given.
type recordingEngine struct {
	mu  sync.Mutex
	got image.Image
}

func (r *recordingEngine) Name() string { return "recording" }

func (r *recordingEngine) Recognize(_ context.Context, img image.Image) (ocr.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = img
	return ocr.Result{Text: "ok"}, nil
}

func testImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtract(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		engine   *mockEngine
		wantText string
		wantErr  error
	}{
		{
			name:     "plain text",
			engine:   &mockEngine{name: "tesseract", text: "Hello World"},
			wantText: "Hello World",
		},
		{
			name:     "normalized",
			engine:   &mockEngine{name: "tesseract", text: "cafe\u0301"},
			wantText: "caf\u00e9",
		},
		{
			name:    "whitespace only",
			engine:  &mockEngine{name: "tesseract", text: " \n\t "},
			wantErr: ocr.ErrNoText,
		},
		{
			name:    "engine error",
			engine:  &mockEngine{name: "tesseract", err: boom},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := ocr.NewRegistry()
			reg.Register(ocr.BackendTesseract, tt.engine)
			x := NewExtractor(reg, nil, ExtractorOptions{})

			result, err := x.Extract(context.Background(), ocr.BackendTesseract, testImage(color.White))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if result.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", result.Text, tt.wantText)
			}
		})
	}
}

func TestExtractUnavailable(t *testing.T) {
	x := NewExtractor(ocr.NewRegistry(), nil, ExtractorOptions{})

	_, err := x.Extract(context.Background(), ocr.BackendVision, testImage(color.White))
	if !errors.Is(err, ocr.ErrUnavailable) {
		t.Errorf("Extract() error = %v, want ErrUnavailable", err)
	}
}

func TestExtractCancelled(t *testing.T) {
	reg := ocr.NewRegistry()
	reg.Register(ocr.BackendTesseract, &mockEngine{name: "tesseract", text: "late"})
	x := NewExtractor(reg, nil, ExtractorOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := x.Extract(ctx, ocr.BackendTesseract, testImage(color.White)); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestExtractCache(t *testing.T) {
	c, err := cache.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	defer c.Close()

	engine := &mockEngine{name: "tesseract", text: "cached text"}
	reg := ocr.NewRegistry()
	reg.Register(ocr.BackendTesseract, engine)
	reg.Register(ocr.BackendTesseractLines, engine)
	x := NewExtractor(reg, c, ExtractorOptions{Settings: "eng"})

	img := testImage(color.White)
	for i := 0; i < 2; i++ {
		result, err := x.Extract(context.Background(), ocr.BackendTesseract, img)
		if err != nil {
			t.Fatalf("Extract() #%d error = %v", i, err)
		}
		if result.Text != "cached text" {
			t.Errorf("Extract() #%d text = %q", i, result.Text)
		}
	}
	if got := engine.calls.Load(); got != 1 {
		t.Errorf("engine called %d times, want 1", got)
	}

	// Other backends and other images miss the cache.
	if _, err := x.Extract(context.Background(), ocr.BackendTesseractLines, img); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if _, err := x.Extract(context.Background(), ocr.BackendTesseract, testImage(color.Black)); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := engine.calls.Load(); got != 3 {
		t.Errorf("engine called %d times, want 3", got)
	}
}

func TestExtractNoTextNotCached(t *testing.T) {
	c, err := cache.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	defer c.Close()

	engine := &mockEngine{name: "tesseract", text: "   "}
	reg := ocr.NewRegistry()
	reg.Register(ocr.BackendTesseract, engine)
	x := NewExtractor(reg, c, ExtractorOptions{})

	img := testImage(color.White)
	for i := 0; i < 2; i++ {
		if _, err := x.Extract(context.Background(), ocr.BackendTesseract, img); !errors.Is(err, ocr.ErrNoText) {
			t.Fatalf("Extract() error = %v, want ErrNoText", err)
		}
	}
	if got := engine.calls.Load(); got != 2 {
		t.Errorf("engine called %d times, want 2", got)
	}
}

func TestExtractPreprocess(t *testing.T) {
	engine := &recordingEngine{}
	reg := ocr.NewRegistry()
	reg.Register(ocr.BackendTesseract, engine)
	x := NewExtractor(reg, nil, ExtractorOptions{
		Preprocess: ocr.PreprocessOptions{Scale: 2},
	})

	if _, err := x.Extract(context.Background(), ocr.BackendTesseract, testImage(color.White)); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if got := engine.got.Bounds().Dx(); got != 16 {
		t.Errorf("engine saw width %d, want 16", got)
	}
}
