package game

import (
	"sync"

	"github.com/lucidplay/crashgate/internal/model"
)

// History is the bounded, ordered record of finished rounds kept for
// display. Append-only for the process lifetime; the oldest entry is
// evicted once capacity is reached.
type History struct {
	mu       sync.RWMutex
	entries  []model.HistoryEntry
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		entries:  make([]model.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

func (h *History) Append(entry model.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:]
	}
}

// Snapshot returns the retained entries, newest first.
func (h *History) Snapshot() []model.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
