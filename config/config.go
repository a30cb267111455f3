// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"go.aimuz.me/snaptext/internal/history"
	"go.aimuz.me/snaptext/internal/types"
)

const (
	appName        = "snaptext"
	configFileName = "config.json"
)

// Defaults applied to missing fields.
const (
	DefaultBackend       = "tesseract"
	DefaultAlternate     = "tesseract-lines"
	DefaultLanguage      = "eng"
	DefaultPreviewWidth  = 300
	DefaultPreviewHeight = 200
	DefaultGlobalHotkey  = "ctrl+shift+o"
	DefaultCacheTTLHours = 7 * 24
)

// Config represents the application configuration.
type Config struct {
	OCR          types.OCRSettings     `json:"ocr"`
	Preview      types.PreviewSettings `json:"preview"`
	ClearPolicy  string                `json:"clear_policy"`
	GlobalHotkey *string               `json:"global_hotkey,omitempty"` // nil means default, "" disables
	Cache        types.CacheSettings   `json:"cache"`

	Credentials []types.APICredential `json:"credentials,omitempty"`
	Vision      *types.VisionConfig   `json:"vision,omitempty"`

	path string
}

// Load loads configuration from the config file in the user config directory.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Save writes back to the same path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path
	cfg.applyDefaults()

	if _, err := history.ParseClearPolicy(cfg.ClearPolicy); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Hotkey returns the global hotkey combination, empty when disabled.
func (c *Config) Hotkey() string {
	if c.GlobalHotkey == nil {
		return DefaultGlobalHotkey
	}
	return *c.GlobalHotkey
}

// SetHotkey sets the global hotkey combination; empty disables it.
func (c *Config) SetHotkey(combo string) error {
	c.GlobalHotkey = &combo
	return c.Save()
}

// SetClearPolicy validates and stores the clear policy.
func (c *Config) SetClearPolicy(policy string) error {
	p, err := history.ParseClearPolicy(policy)
	if err != nil {
		return err
	}
	c.ClearPolicy = string(p)
	return c.Save()
}

// Settings returns the user-editable settings.
func (c *Config) Settings() types.Settings {
	return types.Settings{
		ClearPolicy:  c.ClearPolicy,
		GlobalHotkey: c.Hotkey(),
	}
}

// Default returns the default configuration, saved to the user config dir.
func Default() *Config {
	return defaultConfig()
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		OCR: types.OCRSettings{
			Backend:   DefaultBackend,
			Alternate: DefaultAlternate,
			Languages: []string{DefaultLanguage},
			Grayscale: true,
		},
		Preview: types.PreviewSettings{
			Width:  DefaultPreviewWidth,
			Height: DefaultPreviewHeight,
		},
		ClearPolicy: string(history.KeepOnClear),
		Cache: types.CacheSettings{
			Enabled:  true,
			TTLHours: DefaultCacheTTLHours,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.OCR.Backend == "" {
		c.OCR.Backend = DefaultBackend
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{DefaultLanguage}
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = DefaultPreviewHeight
	}
	if c.ClearPolicy == "" {
		c.ClearPolicy = string(history.KeepOnClear)
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = DefaultCacheTTLHours
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// API Credential Management
// ─────────────────────────────────────────────────────────────────────────────

// GetCredentials returns all API credentials.
func (c *Config) GetCredentials() []types.APICredential {
	return c.Credentials
}

// GetCredential returns a credential by ID.
func (c *Config) GetCredential(id string) *types.APICredential {
	for i := range c.Credentials {
		if c.Credentials[i].ID == id {
			return &c.Credentials[i]
		}
	}
	return nil
}

// AddCredential adds a new API credential.
func (c *Config) AddCredential(cred types.APICredential) error {
	if err := validateCredential(cred); err != nil {
		return err
	}

	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}

	c.Credentials = append(c.Credentials, cred)
	return c.Save()
}

// UpdateCredential updates an existing credential.
func (c *Config) UpdateCredential(id string, cred types.APICredential) error {
	if err := validateCredential(cred); err != nil {
		return err
	}

	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	cred.ID = id // Preserve ID
	c.Credentials[idx] = cred
	return c.Save()
}

// RemoveCredential removes a credential by ID.
// Returns error if credential is in use by the vision config.
func (c *Config) RemoveCredential(id string) error {
	if c.Vision != nil && c.Vision.CredentialID == id {
		return fmt.Errorf("credential in use by vision config")
	}

	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	c.Credentials = slices.Delete(c.Credentials, idx, idx+1)
	return c.Save()
}

func validateCredential(cred types.APICredential) error {
	if cred.Name == "" {
		return fmt.Errorf("credential name required")
	}
	if cred.APIKey == "" {
		return fmt.Errorf("api key required")
	}
	if cred.Type == "openai-compatible" && cred.BaseURL == "" {
		return fmt.Errorf("base url required for openai-compatible")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Vision Configuration
// ─────────────────────────────────────────────────────────────────────────────

// GetVisionConfig returns the vision backend configuration.
func (c *Config) GetVisionConfig() *types.VisionConfig {
	return c.Vision
}

// SetVisionConfig sets the vision backend configuration.
func (c *Config) SetVisionConfig(cfg types.VisionConfig) error {
	if cfg.Enabled {
		if cfg.CredentialID == "" {
			return fmt.Errorf("credential id required")
		}
		cred := c.GetCredential(cfg.CredentialID)
		if cred == nil {
			return fmt.Errorf("credential not found: %s", cfg.CredentialID)
		}
		if cred.Type != "openai" && cred.Type != "openai-compatible" {
			return fmt.Errorf("vision config requires OpenAI-compatible credential")
		}
	}

	if cfg.Model == "" {
		cfg.Model = types.DefaultVisionModel
	}

	c.Vision = &cfg
	return c.Save()
}

// VisionCredential returns the credential for an enabled vision config, or nil.
func (c *Config) VisionCredential() *types.APICredential {
	if c.Vision == nil || !c.Vision.Enabled {
		return nil
	}
	return c.GetCredential(c.Vision.CredentialID)
}
