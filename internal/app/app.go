package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.aimuz.me/snaptext/cache"
	"go.aimuz.me/snaptext/clipboard"
	"go.aimuz.me/snaptext/config"
	"go.aimuz.me/snaptext/hotkey"
	"go.aimuz.me/snaptext/internal/history"
	"go.aimuz.me/snaptext/internal/preview"
	"go.aimuz.me/snaptext/internal/types"
	"go.aimuz.me/snaptext/langdetect"
	"go.aimuz.me/snaptext/ocr"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// ErrNoSelection is returned when copying without a selected history entry.
var ErrNoSelection = errors.New("no history entry selected")

// Clipboard is the clipboard access the service needs.
type Clipboard interface {
	ReadImage() (image.Image, error)
	WriteText(text string) error
}

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg   *config.Config
	cache *cache.Cache

	settingsMu sync.Mutex // Guards cfg writes and hotkey
	hotkey   *hotkey.Manager

	// UI references - set via Init
	app    *application.App
	window application.Window
	onEmit func(name string, data any) // Overrides app events in tests

	clip      Clipboard
	registry  *ocr.Registry
	extractor *Extractor
	session   *Session

	// Background recognition
	runMu  sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}

	// Initialize cache
	var c *cache.Cache
	if cfg.Cache.Enabled {
		c = openCache()
	}

	s.setup(cfg, clipboard.New(), ocr.NewRegistry(), c)

	// Setup hotkey
	s.settingsMu.Lock()
	s.setupHotkey()
	s.settingsMu.Unlock()

	slog.Info("service initialized",
		"backend", s.session.Backend(),
		"tesseract", ocr.TesseractVersion(),
		"clear_policy", s.session.ClearPolicy())
}

// setup wires the components. Init calls it with real dependencies.
func (s *Service) setup(cfg *config.Config, clip Clipboard, reg *ocr.Registry, c *cache.Cache) {
	s.cfg = cfg
	s.clip = clip
	s.registry = reg
	s.cache = c

	registerEngines(reg, cfg)
	s.extractor = newExtractorFromConfig(reg, c, cfg)

	primary := parseBackendOr(cfg.OCR.Backend, ocr.BackendTesseract)
	alternate := parseBackendOr(cfg.OCR.Alternate, primary)
	policy, err := history.ParseClearPolicy(cfg.ClearPolicy)
	if err != nil {
		slog.Warn("invalid clear policy, keeping history", "error", err)
		policy = history.KeepOnClear
	}
	s.session = NewSession(primary, alternate, reg.Has, policy)
}

// Shutdown cancels recognition and releases resources.
func (s *Service) Shutdown() {
	s.settingsMu.Lock()
	if s.hotkey != nil {
		s.hotkey.Stop()
		s.hotkey = nil
	}
	s.settingsMu.Unlock()

	s.CancelExtraction()
	s.wait()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("close cache", "error", err)
		}
	}
}

func openCache() *cache.Cache {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for cache", "error", err)
		return nil
	}

	cachePath := filepath.Join(configDir, "snaptext", "cache")
	c, err := cache.New(cachePath)
	if err != nil {
		slog.Error("init cache", "error", err)
		return nil
	}
	slog.Info("cache initialized", "path", cachePath)
	return c
}

func registerEngines(reg *ocr.Registry, cfg *config.Config) {
	tcfg := ocr.TesseractConfig{
		Languages:      cfg.OCR.Languages,
		PageSegMode:    cfg.OCR.PageSegMode,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	}
	reg.Register(ocr.BackendTesseract, ocr.NewTesseract(tcfg))
	reg.Register(ocr.BackendTesseractLines, ocr.NewTesseractLines(tcfg))
	registerVision(reg, cfg)
}

func registerVision(reg *ocr.Registry, cfg *config.Config) {
	cred := cfg.VisionCredential()
	if cred == nil {
		reg.Unregister(ocr.BackendVision)
		return
	}
	reg.Register(ocr.BackendVision, ocr.NewVision(ocr.VisionConfig{
		APIKey:  cred.APIKey,
		BaseURL: cred.BaseURL,
		Model:   cfg.Vision.Model,
	}))
	slog.Info("registered vision backend", "model", cfg.Vision.Model)
}

func newExtractorFromConfig(reg *ocr.Registry, c *cache.Cache, cfg *config.Config) *Extractor {
	model := ""
	if cfg.Vision != nil {
		model = cfg.Vision.Model
	}
	return NewExtractor(reg, c, ExtractorOptions{
		Preprocess: ocr.PreprocessOptions{
			Grayscale: cfg.OCR.Grayscale,
			Scale:     cfg.OCR.Scale,
			Threshold: cfg.OCR.Threshold,
		},
		CacheTTL: time.Duration(cfg.Cache.TTLHours) * time.Hour,
		Settings: fmt.Sprintf("%s|%d|%s", strings.Join(cfg.OCR.Languages, "+"), cfg.OCR.PageSegMode, model),
	})
}

func parseBackendOr(name string, fallback ocr.Backend) ocr.Backend {
	if name == "" {
		return fallback
	}
	b, err := ocr.ParseBackend(name)
	if err != nil {
		slog.Warn("invalid backend in config", "backend", name, "fallback", fallback, "error", err)
		return fallback
	}
	return b
}

// setupHotkey registers the configured hotkey. Callers hold settingsMu.
func (s *Service) setupHotkey() {
	combo := s.cfg.Hotkey()
	if combo == "" {
		return
	}

	m, err := hotkey.NewManager(combo, func() {
		go func() {
			s.showWindow()
			if err := s.Paste(); err != nil {
				slog.Warn("paste from hotkey", "error", err)
			}
		}()
	})
	if err != nil {
		slog.Error("parse hotkey", "hotkey", combo, "error", err)
		s.emit(EventHotkey, false)
		return
	}

	if err := m.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
		s.emit(EventHotkey, false)
		return
	}
	s.hotkey = m
	s.emit(EventHotkey, true)
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.onEmit != nil {
		s.onEmit(name, data)
		return
	}
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

func (s *Service) notify(n types.Notice) {
	s.emit(EventNotice, n)
}

func (s *Service) emitState() {
	s.emit(EventState, s.session.State())
}

func (s *Service) showWindow() {
	if s.window != nil {
		s.window.Show()
		s.window.Focus()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Paste & Extract
// ─────────────────────────────────────────────────────────────────────────────

// Paste reads the clipboard image, shows its preview and starts recognition
// in the background. A running recognition is cancelled first.
func (s *Service) Paste() error {
	img, err := s.clip.ReadImage()
	if err != nil {
		if errors.Is(err, clipboard.ErrNoImage) {
			s.notify(noticeNoImage)
			return err
		}
		slog.Error("read clipboard", "error", err)
		s.notify(errorNotice(err))
		return fmt.Errorf("read clipboard: %w", err)
	}

	p, err := preview.Render(img, s.cfg.Preview.Width, s.cfg.Preview.Height)
	if err != nil {
		slog.Error("render preview", "error", err)
		s.notify(errorNotice(err))
		return fmt.Errorf("render preview: %w", err)
	}

	s.session.SetImage(img, p)
	s.startExtraction(img)
	s.emitState()
	return nil
}

func (s *Service) startExtraction(img image.Image) {
	backend := s.session.Backend()

	s.runMu.Lock()
	x := s.extractor
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.session.SetBusy(true)
	s.wg.Add(1)
	s.runMu.Unlock()

	s.emit(EventBusy, true)

	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runExtraction(ctx, x, gen, backend, img)
	}()
}

func (s *Service) runExtraction(ctx context.Context, x *Extractor, gen uint64, backend ocr.Backend, img image.Image) {
	start := time.Now()
	result, err := x.Extract(ctx, backend, img)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	// A newer paste owns the state now.
	if gen != s.gen {
		return
	}
	s.cancel = nil

	switch {
	case ctx.Err() != nil:
		slog.Info("extraction cancelled", "backend", backend)
	case errors.Is(err, ocr.ErrNoText):
		s.notify(noticeNoText)
	case err != nil:
		slog.Error("extract text", "backend", backend, "error", err)
		s.notify(extractionErrorNotice(err))
	default:
		code, _ := langdetect.Detect(result.Text)
		rec := s.session.Record(result.Text, backend, code)
		slog.Info("text extracted",
			"backend", backend,
			"chars", len(result.Text),
			"language", code,
			"history", s.session.HistoryLen(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"id", rec.ID)
	}

	s.session.SetBusy(false)
	s.emit(EventBusy, false)
	s.emitState()
}

// CancelExtraction stops a running recognition. Its result is discarded.
func (s *Service) CancelExtraction() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// wait blocks until background recognition has finished.
func (s *Service) wait() {
	s.wg.Wait()
}

// ─────────────────────────────────────────────────────────────────────────────
// Display & History
// ─────────────────────────────────────────────────────────────────────────────

// GetState returns everything the window renders.
func (s *Service) GetState() types.ViewState {
	return s.session.State()
}

// Clear resets the displayed text and preview, and the history when the
// clear policy says so. A running recognition is cancelled.
func (s *Service) Clear() {
	s.CancelExtraction()
	s.session.Clear()
	s.emitState()
}

// CopyFromHistory copies the text of the entry at index to the clipboard.
// A negative index means nothing is selected.
func (s *Service) CopyFromHistory(index int) error {
	if index < 0 {
		s.notify(noticeNoSelection)
		return ErrNoSelection
	}

	rec, err := s.session.Lookup(index)
	if err != nil {
		s.notify(errorNotice(err))
		return err
	}

	if err := s.clip.WriteText(rec.Text); err != nil {
		slog.Error("write clipboard", "error", err)
		s.notify(errorNotice(err))
		return fmt.Errorf("write clipboard: %w", err)
	}

	s.notify(noticeCopied)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Backend Toggle
// ─────────────────────────────────────────────────────────────────────────────

// ToggleBackend switches between the primary and alternate OCR backend.
func (s *Service) ToggleBackend() types.BackendStatus {
	status := s.session.Toggle()
	slog.Info("ocr backend", "active", status.Backend, "can_toggle", status.CanToggle)
	s.emitState()
	return status
}

// GetBackendStatus returns the active backend.
func (s *Service) GetBackendStatus() types.BackendStatus {
	return s.session.Status()
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetSettings returns the user-editable settings.
func (s *Service) GetSettings() types.Settings {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.cfg.Settings()
}

// SetClearPolicy sets whether Clear also empties the history ("keep" or "clear").
func (s *Service) SetClearPolicy(policy string) error {
	p, err := history.ParseClearPolicy(policy)
	if err != nil {
		return err
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	if err := s.cfg.SetClearPolicy(string(p)); err != nil {
		return err
	}
	s.session.SetClearPolicy(p)
	return nil
}

// SetGlobalHotkey changes the global paste shortcut; empty disables it.
func (s *Service) SetGlobalHotkey(combo string) error {
	if combo != "" {
		if _, err := hotkey.Parse(combo); err != nil {
			return err
		}
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := s.cfg.SetHotkey(combo); err != nil {
		return err
	}
	if s.hotkey != nil {
		s.hotkey.Stop()
		s.hotkey = nil
	}
	s.setupHotkey()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// API Credential Management
// ─────────────────────────────────────────────────────────────────────────────

// GetCredentials returns all API credentials.
func (s *Service) GetCredentials() []types.APICredential {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.cfg.GetCredentials()
}

// AddCredential adds a new API credential.
func (s *Service) AddCredential(cred types.APICredential) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.cfg.AddCredential(cred)
}

// UpdateCredential updates an existing credential.
func (s *Service) UpdateCredential(id string, cred types.APICredential) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := s.cfg.UpdateCredential(id, cred); err != nil {
		return err
	}
	s.reloadVision()
	return nil
}

// RemoveCredential removes a credential by ID.
func (s *Service) RemoveCredential(id string) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.cfg.RemoveCredential(id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Vision Configuration
// ─────────────────────────────────────────────────────────────────────────────

// GetVisionConfig returns the vision backend configuration.
func (s *Service) GetVisionConfig() *types.VisionConfig {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.cfg.GetVisionConfig()
}

// SetVisionConfig sets the vision backend configuration.
func (s *Service) SetVisionConfig(cfg types.VisionConfig) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := s.cfg.SetVisionConfig(cfg); err != nil {
		return err
	}
	s.reloadVision()
	return nil
}

// reloadVision rebuilds the vision engine from cfg. Callers hold settingsMu.
func (s *Service) reloadVision() {
	registerVision(s.registry, s.cfg)

	s.runMu.Lock()
	s.extractor = newExtractorFromConfig(s.registry, s.cache, s.cfg)
	s.runMu.Unlock()

	if s.session.Reconcile() {
		slog.Info("ocr backend unavailable, using primary", "active", s.session.Backend())
	}
	s.emitState()
}
