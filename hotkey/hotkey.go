// Package hotkey registers a system-wide keyboard shortcut.
package hotkey

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

var modifiers = []string{"ctrl", "shift", "alt", "cmd"}

var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"command": "cmd",
	"super":   "cmd",
	"meta":    "cmd",
}

// Parse converts a combination such as "Ctrl+Shift+O" into the key list
// expected by gohook: the main key first, then modifiers in canonical order.
func Parse(combo string) ([]string, error) {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return nil, fmt.Errorf("empty hotkey")
	}

	var key string
	var mods []string
	for _, part := range strings.Split(combo, "+") {
		p := strings.ToLower(strings.TrimSpace(part))
		if alias, ok := aliases[p]; ok {
			p = alias
		}
		switch {
		case p == "":
			return nil, fmt.Errorf("invalid hotkey %q", combo)
		case slices.Contains(modifiers, p):
			if !slices.Contains(mods, p) {
				mods = append(mods, p)
			}
		case key != "":
			return nil, fmt.Errorf("hotkey %q has more than one key", combo)
		default:
			key = p
		}
	}
	if key == "" {
		return nil, fmt.Errorf("hotkey %q has no key", combo)
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("hotkey %q needs a modifier", combo)
	}

	slices.SortFunc(mods, func(a, b string) int {
		return slices.Index(modifiers, a) - slices.Index(modifiers, b)
	})
	return append([]string{key}, mods...), nil
}

// Manager listens for one global hotkey.
type Manager struct {
	keys    []string
	onPress func()

	mu      sync.Mutex
	running bool
}

// NewManager creates a manager calling onPress when combo is pressed.
func NewManager(combo string, onPress func()) (*Manager, error) {
	keys, err := Parse(combo)
	if err != nil {
		return nil, err
	}
	return &Manager{keys: keys, onPress: onPress}, nil
}

// Start begins listening in the background.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	hook.Register(hook.KeyDown, m.keys, func(hook.Event) {
		m.onPress()
	})
	events := hook.Start()
	m.running = true

	go func() {
		<-hook.Process(events)
	}()

	slog.Info("global hotkey registered", "keys", m.keys)
	return nil
}

// Stop ends the listener.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	hook.End()
	m.running = false
}
