package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/metrics"
)

const (
	// StreamKeyPrefix is prepended to the owner id to form a stream key.
	StreamKeyPrefix = "stream:task_activity:"

	// MaxStreamLen is the approximate max length of each stream.
	MaxStreamLen = 200

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond

	payloadField = "payload"
)

// StreamKey returns the Redis stream holding ownerID's events.
func StreamKey(ownerID string) string {
	return StreamKeyPrefix + ownerID
}

// RedisFeed stores events in one capped Redis stream per user.
type RedisFeed struct {
	streams *cache.Cache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRedisFeed creates a feed on the streams of c.
func NewRedisFeed(c *cache.Cache, logger *slog.Logger, recorder metrics.Recorder) *RedisFeed {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedisFeed{
		streams: c,
		logger:  logger.With("component", "activity.feed"),
		metrics: recorder,
	}
}

// Publish adds an event to the owner's stream synchronously.
func (f *RedisFeed) Publish(ctx context.Context, ownerID string, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	return f.streams.AppendCapped(ctx, StreamKey(ownerID), MaxStreamLen, map[string]any{
		payloadField: string(data),
	})
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (f *RedisFeed) PublishAsync(ownerID string, event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := f.Publish(ctx, ownerID, event)
		if err != nil {
			f.logger.Warn("failed to publish activity event",
				"task_id", event.TaskID,
				"type", event.Type,
				"error", err,
			)
			f.metrics.IncActivityPublished("dropped")
			return
		}

		f.logger.Debug("activity event published",
			"task_id", event.TaskID,
			"type", event.Type,
			"stream_id", streamID,
		)
		f.metrics.IncActivityPublished("success")
	}()
}

// Recent returns the newest events first. Entries that fail to decode are skipped.
func (f *RedisFeed) Recent(ctx context.Context, ownerID string, limit int) ([]Event, error) {
	messages, err := f.streams.Latest(ctx, StreamKey(ownerID), int64(ClampLimit(limit)))
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(messages))
	for _, msg := range messages {
		raw, ok := msg.Values[payloadField].(string)
		if !ok {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			f.logger.Warn("skipping undecodable activity entry",
				"stream_id", msg.ID,
				"error", err,
			)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}
