package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"go.aimuz.me/snaptext/cache"
	"go.aimuz.me/snaptext/ocr"
)

// Extractor runs recognition with preprocessing and result caching.
// Zero value is not useful; create via NewExtractor.
type Extractor struct {
	registry   *ocr.Registry
	cache      *cache.Cache
	ttl        time.Duration
	preprocess ocr.PreprocessOptions
	settings   string // Folded into cache keys
}

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	Preprocess ocr.PreprocessOptions
	CacheTTL   time.Duration
	// Settings identifies everything besides the image that changes the
	// output (languages, page mode, model). Results are cached per value.
	Settings string
}

// NewExtractor creates an Extractor. If c is nil, caching is disabled.
func NewExtractor(reg *ocr.Registry, c *cache.Cache, opts ExtractorOptions) *Extractor {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Extractor{
		registry:   reg,
		cache:      c,
		ttl:        ttl,
		preprocess: opts.Preprocess,
		settings:   opts.Settings,
	}
}

// Extract recognizes text in img with the given backend.
// It returns ocr.ErrNoText when only whitespace was found.
func (x *Extractor) Extract(ctx context.Context, backend ocr.Backend, img image.Image) (ocr.Result, error) {
	engine, ok := x.registry.Get(backend)
	if !ok {
		return ocr.Result{}, fmt.Errorf("%s: %w", backend, ocr.ErrUnavailable)
	}

	key := x.cacheKey(backend, img)

	// Check cache first
	if result, ok := x.getCached(key); ok {
		return result, nil
	}

	input := img
	if x.preprocess.Enabled() {
		input = ocr.Preprocess(img, x.preprocess)
	}

	result, err := engine.Recognize(ctx, input)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize with %s: %w", engine.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	result.Text = ocr.Normalize(result.Text)
	if result.Empty() {
		return ocr.Result{}, ocr.ErrNoText
	}

	// Store in cache (best effort)
	x.setCache(key, backend, result.Text)

	return result, nil
}

func (x *Extractor) cacheKey(backend ocr.Backend, img image.Image) string {
	if x.cache == nil {
		return ""
	}
	data, err := ocr.EncodePNG(img)
	if err != nil {
		slog.Warn("hash image for cache", "error", err)
		return ""
	}
	return cache.GenerateKey(
		backend.String(),
		x.settings,
		fmt.Sprintf("%+v", x.preprocess),
		cache.HashBytes(data),
	)
}

func (x *Extractor) getCached(key string) (ocr.Result, bool) {
	if x.cache == nil || key == "" {
		return ocr.Result{}, false
	}

	entry, found := x.cache.Get(key)
	if !found {
		return ocr.Result{}, false
	}

	slog.Debug("recognition cache hit", "backend", entry.Backend)
	return ocr.Result{Text: entry.Text}, true
}

func (x *Extractor) setCache(key string, backend ocr.Backend, text string) {
	if x.cache == nil || key == "" {
		return
	}

	entry := &cache.Entry{
		Text:      text,
		Backend:   backend.String(),
		CreatedAt: time.Now(),
	}

	if err := x.cache.Set(key, entry, x.ttl); err != nil {
		slog.Warn("cache recognition", "error", err)
	}
}
