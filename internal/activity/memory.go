package activity

import (
	"context"
	"sync"
)

// MemoryFeed keeps events in process memory. PublishAsync is synchronous.
type MemoryFeed struct {
	mu     sync.Mutex
	events map[string][]Event
}

// NewMemoryFeed creates an empty MemoryFeed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{events: make(map[string][]Event)}
}

// PublishAsync implements Feed.
func (f *MemoryFeed) PublishAsync(ownerID string, event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	events := append(f.events[ownerID], event)
	if len(events) > MaxStreamLen {
		events = events[len(events)-MaxStreamLen:]
	}
	f.events[ownerID] = events
}

// Recent implements Feed.
func (f *MemoryFeed) Recent(ctx context.Context, ownerID string, limit int) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.events[ownerID]
	n := ClampLimit(limit)
	if n > len(stored) {
		n = len(stored)
	}

	out := make([]Event, 0, n)
	for i := len(stored) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}
