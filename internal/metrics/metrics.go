// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Generation outcomes passed to ObserveGeneration.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeBlocked = "blocked"
	OutcomeEmpty   = "empty"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Task management metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskDeleted()

	// LLM pipeline metrics
	ObserveGeneration(duration time.Duration, outcome string)
	IncExtractionFailure(reason string) // reason: "no_json", "malformed", "missing_field", "invalid_field"

	// Activity feed metrics
	IncActivityPublished(status string) // status: "success" or "dropped"

	// HTTP metrics
	RecordHTTPStatus(statusCode int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
