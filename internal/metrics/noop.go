package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTaskCreated is a no-op.
func (n *NoopRecorder) IncTaskCreated() {}

// IncTaskUpdated is a no-op.
func (n *NoopRecorder) IncTaskUpdated() {}

// IncTaskDeleted is a no-op.
func (n *NoopRecorder) IncTaskDeleted() {}

// ObserveGeneration is a no-op.
func (n *NoopRecorder) ObserveGeneration(duration time.Duration, outcome string) {}

// IncExtractionFailure is a no-op.
func (n *NoopRecorder) IncExtractionFailure(reason string) {}

// IncActivityPublished is a no-op.
func (n *NoopRecorder) IncActivityPublished(status string) {}

// RecordHTTPStatus is a no-op.
func (n *NoopRecorder) RecordHTTPStatus(statusCode int) {}
