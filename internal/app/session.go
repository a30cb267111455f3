package app

import (
	"image"
	"strings"
	"sync"

	"go.aimuz.me/snaptext/internal/history"
	"go.aimuz.me/snaptext/internal/types"
	"go.aimuz.me/snaptext/ocr"
)

// Session owns the state of one application run: the current image, the
// displayed text, the extraction history and the active backend.
// It is created at startup and reset only by Clear.
type Session struct {
	mu sync.Mutex

	image   image.Image
	preview string
	text    string
	history *history.History
	busy    bool

	primary   ocr.Backend
	alternate ocr.Backend
	active    ocr.Backend
	available func(ocr.Backend) bool

	clearPolicy history.ClearPolicy
}

// NewSession creates a session toggling between primary and alternate.
// available reports whether a backend can currently be used.
func NewSession(primary, alternate ocr.Backend, available func(ocr.Backend) bool, policy history.ClearPolicy) *Session {
	if available == nil {
		available = func(ocr.Backend) bool { return true }
	}
	return &Session{
		history:     history.New(),
		primary:     primary,
		alternate:   alternate,
		active:      primary,
		available:   available,
		clearPolicy: policy,
	}
}

// SetImage replaces the current image and its preview.
func (s *Session) SetImage(img image.Image, preview string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = img
	s.preview = preview
}

// Image returns the current image, nil after Clear.
func (s *Session) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Record appends text to the display and to the history.
func (s *Session) Record(text string, backend ocr.Backend, language string) types.Extraction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.text != "" && !strings.HasSuffix(s.text, "\n") {
		s.text += "\n"
	}
	s.text += text
	return s.history.Append(text, backend.String(), language)
}

// Lookup returns the history record at the 0-based index.
func (s *Session) Lookup(index int) (types.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Get(index)
}

// HistoryLen returns the number of extractions.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// Clear resets the displayed text and image. History is emptied only
// under WipeOnClear.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = ""
	s.image = nil
	s.preview = ""
	if s.clearPolicy == history.WipeOnClear {
		s.history.Clear()
	}
}

// SetClearPolicy changes what Clear does to the history.
func (s *Session) SetClearPolicy(p history.ClearPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPolicy = p
}

// ClearPolicy returns the active clear policy.
func (s *Session) ClearPolicy() history.ClearPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearPolicy
}

// Backend returns the backend used for the next recognition.
func (s *Session) Backend() ocr.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback()
	return s.active
}

// Reconcile switches back to the primary backend when the active one is no
// longer available. It reports whether the backend changed.
func (s *Session) Reconcile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback()
}

// Toggle flips between the primary and alternate backend. It is a no-op
// when the alternate backend is unavailable. An active backend that has
// disappeared is replaced by the primary instead.
func (s *Session) Toggle() types.BackendStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fallback() {
		return s.status()
	}
	if s.canToggle() {
		if s.active == s.primary {
			s.active = s.alternate
		} else {
			s.active = s.primary
		}
	}
	return s.status()
}

// Status returns the active backend status.
func (s *Session) Status() types.BackendStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback()
	return s.status()
}

// SetBusy marks whether a recognition is running.
func (s *Session) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
}

// State returns a snapshot for the frontend.
func (s *Session) State() types.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback()
	return types.ViewState{
		Preview: s.preview,
		Text:    s.text,
		History: s.history.Items(),
		Backend: s.status(),
		Busy:    s.busy,
	}
}

func (s *Session) fallback() bool {
	if s.active == s.primary || s.available(s.active) {
		return false
	}
	s.active = s.primary
	return true
}

func (s *Session) canToggle() bool {
	return s.primary != s.alternate && s.available(s.alternate)
}

func (s *Session) status() types.BackendStatus {
	return types.BackendStatus{
		Backend:   s.active.String(),
		Label:     StatusLabel(s.active),
		CanToggle: s.canToggle(),
	}
}

// StatusLabel is the status line shown next to the toggle button.
func StatusLabel(b ocr.Backend) string {
	return "OCR Method: " + b.Label()
}
