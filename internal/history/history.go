// Package history keeps the ordered, append-only list of extractions made
// during a session.
package history

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.aimuz.me/snaptext/internal/types"
)

// ErrOutOfRange is returned for an index outside the history.
var ErrOutOfRange = errors.New("history index out of range")

// ClearPolicy decides whether the Clear action also empties the history.
type ClearPolicy string

const (
	// KeepOnClear resets only the display; history survives.
	KeepOnClear ClearPolicy = "keep"
	// WipeOnClear resets the display and empties the history.
	WipeOnClear ClearPolicy = "clear"
)

// ParseClearPolicy validates s. The empty string maps to KeepOnClear.
func ParseClearPolicy(s string) (ClearPolicy, error) {
	switch ClearPolicy(s) {
	case "", KeepOnClear:
		return KeepOnClear, nil
	case WipeOnClear:
		return WipeOnClear, nil
	default:
		return "", fmt.Errorf("unknown clear policy: %q", s)
	}
}

// History is an append-only sequence of extractions.
// It is not safe for concurrent use; the owning session serializes access.
type History struct {
	records []types.Extraction
	now     func() time.Time
}

// New returns an empty history.
func New() *History {
	return &History{now: time.Now}
}

// Append stores text at the end and returns the new record.
func (h *History) Append(text, backend, language string) types.Extraction {
	rec := types.Extraction{
		ID:        uuid.New().String(),
		Text:      text,
		Backend:   backend,
		Language:  language,
		CreatedAt: h.now(),
	}
	h.records = append(h.records, rec)
	return rec
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}

// Get returns the record at the 0-based index.
func (h *History) Get(index int) (types.Extraction, error) {
	if index < 0 || index >= len(h.records) {
		return types.Extraction{}, fmt.Errorf("get %d of %d: %w", index, len(h.records), ErrOutOfRange)
	}
	return h.records[index], nil
}

// Records returns a copy of all records in insertion order.
func (h *History) Records() []types.Extraction {
	return slices.Clone(h.records)
}

// Items returns the list entries, labelled "Item 1" through "Item N".
func (h *History) Items() []types.HistoryItem {
	items := make([]types.HistoryItem, len(h.records))
	for i, rec := range h.records {
		items[i] = types.HistoryItem{
			Index:    i,
			Label:    Label(i),
			Language: rec.Language,
		}
	}
	return items
}

// Clear removes every record.
func (h *History) Clear() {
	h.records = nil
}

// Label returns the list label for a 0-based index.
func Label(index int) string {
	return fmt.Sprintf("Item %d", index+1)
}
