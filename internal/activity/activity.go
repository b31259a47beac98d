// Package activity records a per-user feed of task changes.
package activity

import (
	"context"
	"time"
)

// EventType names what happened to a task.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

const (
	// DefaultLimit is the number of events Recent returns when limit <= 0.
	DefaultLimit = 20
	// MaxLimit caps a single Recent call.
	MaxLimit = 100
)

// Event is one entry in a user's feed.
type Event struct {
	Type   EventType `json:"type"`
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// Feed publishes and reads task activity.
type Feed interface {
	// PublishAsync records event without blocking the caller. Failures are not reported.
	PublishAsync(ownerID string, event Event)
	// Recent returns up to limit events for ownerID, newest first.
	Recent(ctx context.Context, ownerID string, limit int) ([]Event, error)
}

// ClampLimit maps a requested limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NoopFeed discards events. It is used when Redis is not configured.
type NoopFeed struct{}

// PublishAsync is a no-op.
func (NoopFeed) PublishAsync(ownerID string, event Event) {}

// Recent always returns an empty list.
func (NoopFeed) Recent(ctx context.Context, ownerID string, limit int) ([]Event, error) {
	return []Event{}, nil
}
