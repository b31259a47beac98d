package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TasksCreated            uint64
	TasksUpdated            uint64
	TasksDeleted            uint64
	GenerationCount         uint64
	GenerationDurationTotal time.Duration
	GenerationOutcomes      map[string]uint64
	ExtractionFailures      map[string]uint64
	ActivityPublished       map[string]uint64
	HTTPStatuses            map[int]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	tasksCreated         uint64
	tasksUpdated         uint64
	tasksDeleted         uint64
	generationCount      uint64
	generationDurationNs int64

	mu                 sync.Mutex
	generationOutcomes map[string]uint64
	extractionFailures map[string]uint64
	activityPublished  map[string]uint64
	httpStatuses       map[int]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		generationOutcomes: make(map[string]uint64),
		extractionFailures: make(map[string]uint64),
		activityPublished:  make(map[string]uint64),
		httpStatuses:       make(map[int]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		TasksCreated:            atomic.LoadUint64(&m.tasksCreated),
		TasksUpdated:            atomic.LoadUint64(&m.tasksUpdated),
		TasksDeleted:            atomic.LoadUint64(&m.tasksDeleted),
		GenerationCount:         atomic.LoadUint64(&m.generationCount),
		GenerationDurationTotal: time.Duration(atomic.LoadInt64(&m.generationDurationNs)),
		GenerationOutcomes:      copyCounts(m.generationOutcomes),
		ExtractionFailures:      copyCounts(m.extractionFailures),
		ActivityPublished:       copyCounts(m.activityPublished),
		HTTPStatuses:            copyCounts(m.httpStatuses),
	}
}

// IncTaskCreated increments task created counter.
func (m *InMemoryRecorder) IncTaskCreated() {
	atomic.AddUint64(&m.tasksCreated, 1)
}

// IncTaskUpdated increments task updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() {
	atomic.AddUint64(&m.tasksUpdated, 1)
}

// IncTaskDeleted increments task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() {
	atomic.AddUint64(&m.tasksDeleted, 1)
}

// ObserveGeneration records one model call.
func (m *InMemoryRecorder) ObserveGeneration(duration time.Duration, outcome string) {
	atomic.AddUint64(&m.generationCount, 1)
	atomic.AddInt64(&m.generationDurationNs, duration.Nanoseconds())

	m.mu.Lock()
	m.generationOutcomes[outcome]++
	m.mu.Unlock()
}

// IncExtractionFailure counts a reply that could not be turned into task fields.
func (m *InMemoryRecorder) IncExtractionFailure(reason string) {
	m.mu.Lock()
	m.extractionFailures[reason]++
	m.mu.Unlock()
}

// IncActivityPublished counts an activity event by publish status.
func (m *InMemoryRecorder) IncActivityPublished(status string) {
	m.mu.Lock()
	m.activityPublished[status]++
	m.mu.Unlock()
}

// RecordHTTPStatus counts a response by status code.
func (m *InMemoryRecorder) RecordHTTPStatus(statusCode int) {
	m.mu.Lock()
	m.httpStatuses[statusCode]++
	m.mu.Unlock()
}

func copyCounts[K comparable](src map[K]uint64) map[K]uint64 {
	dst := make(map[K]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
