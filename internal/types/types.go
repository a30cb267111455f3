// Package types provides shared type definitions for the application.
package types

import "time"

// APICredential is an API key for a remote recognition provider.
type APICredential struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // "openai", "openai-compatible"
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key"`
}

// VisionConfig selects the credential and model used by the vision backend.
type VisionConfig struct {
	Enabled      bool   `json:"enabled"`
	CredentialID string `json:"credential_id"`
	Model        string `json:"model"`
}

// DefaultVisionModel is used when VisionConfig.Model is empty.
const DefaultVisionModel = "gpt-4o-mini"

// OCRSettings controls recognition and preprocessing.
type OCRSettings struct {
	Backend        string   `json:"backend"`
	Alternate      string   `json:"alternate"`
	Languages      []string `json:"languages"`
	PageSegMode    int      `json:"page_seg_mode,omitempty"`
	TessdataPrefix string   `json:"tessdata_prefix,omitempty"`
	Grayscale      bool     `json:"grayscale"`
	Scale          float64  `json:"scale,omitempty"`     // Upscale factor, <= 1 disables
	Threshold      uint8    `json:"threshold,omitempty"` // Binarization level, 0 disables
}

// PreviewSettings is the fit-to-box size of the image preview.
type PreviewSettings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CacheSettings controls the recognition cache.
type CacheSettings struct {
	Enabled  bool `json:"enabled"`
	TTLHours int  `json:"ttl_hours,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Session Types
// ─────────────────────────────────────────────────────────────────────────────

// Extraction is one recognized text block kept in the session history.
type Extraction struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Backend   string    `json:"backend"`
	Language  string    `json:"language,omitempty"` // ISO 639-1, empty if unknown
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryItem is the list entry shown for an extraction.
type HistoryItem struct {
	Index    int    `json:"index"` // 0-based position
	Label    string `json:"label"` // "Item N"
	Language string `json:"language,omitempty"`
}

// BackendStatus describes the active recognition backend.
type BackendStatus struct {
	Backend   string `json:"backend"`
	Label     string `json:"label"` // "OCR Method: Tesseract"
	CanToggle bool   `json:"canToggle"`
}

// ViewState is everything the window renders.
type ViewState struct {
	Preview string        `json:"preview,omitempty"` // data: URL, empty when cleared
	Text    string        `json:"text"`
	History []HistoryItem `json:"history"`
	Backend BackendStatus `json:"backend"`
	Busy    bool          `json:"busy"`
}

// NoticeKind is the severity of a user-visible notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a modal message shown by the frontend.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Settings is the user-editable subset of the configuration.
type Settings struct {
	ClearPolicy  string `json:"clearPolicy"`
	GlobalHotkey string `json:"globalHotkey"`
}
