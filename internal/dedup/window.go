// Package dedup suppresses redelivered Slack events within a bounded window.
package dedup

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of event ids remembered when no capacity is configured
const DefaultCapacity = 1000

// Window remembers the most recent event ids in arrival order.
// Lookups never refresh an id, so the oldest arrival is evicted first.
type Window struct {
	ids *lru.Cache[string, struct{}]
}

// NewWindow creates a window holding at most capacity ids
func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ids, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup window: %w", err)
	}
	return &Window{ids: ids}, nil
}

// SeenOrRecord reports whether eventID was already recorded and records it if not.
// The check and the insert happen under one lock, so concurrent redeliveries of the
// same id see exactly one "new" result. Empty ids are never recorded.
func (w *Window) SeenOrRecord(eventID string) bool {
	if eventID == "" {
		return false
	}
	seen, _ := w.ids.ContainsOrAdd(eventID, struct{}{})
	return seen
}

// contains reports whether eventID is tracked without recording it
func (w *Window) contains(eventID string) bool {
	return w.ids.Contains(eventID)
}

// size returns the number of ids currently tracked
func (w *Window) size() int {
	return w.ids.Len()
}
