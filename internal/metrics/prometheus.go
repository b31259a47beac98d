package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is a Recorder backed by Prometheus metrics.
type Collector struct {
	tasksCreated       prometheus.Counter
	tasksUpdated       prometheus.Counter
	tasksDeleted       prometheus.Counter
	generationLatency  *prometheus.HistogramVec
	extractionFailures *prometheus.CounterVec
	activityPublished  *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskwise_tasks_created_total",
			Help: "Tasks created.",
		}),
		tasksUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskwise_tasks_updated_total",
			Help: "Tasks updated.",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskwise_tasks_deleted_total",
			Help: "Tasks deleted.",
		}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskwise_llm_generation_seconds",
			Help:    "Latency of LLM generation calls by outcome.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"outcome"}),
		extractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskwise_extraction_failures_total",
			Help: "LLM replies that could not be turned into task fields.",
		}, []string{"reason"}),
		activityPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskwise_activity_published_total",
			Help: "Activity events by publish status.",
		}, []string{"status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskwise_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.tasksCreated,
		c.tasksUpdated,
		c.tasksDeleted,
		c.generationLatency,
		c.extractionFailures,
		c.activityPublished,
		c.httpStatus,
	)

	return c
}

// IncTaskCreated implements Recorder.
func (c *Collector) IncTaskCreated() {
	c.tasksCreated.Inc()
}

// IncTaskUpdated implements Recorder.
func (c *Collector) IncTaskUpdated() {
	c.tasksUpdated.Inc()
}

// IncTaskDeleted implements Recorder.
func (c *Collector) IncTaskDeleted() {
	c.tasksDeleted.Inc()
}

// ObserveGeneration implements Recorder.
func (c *Collector) ObserveGeneration(duration time.Duration, outcome string) {
	c.generationLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncExtractionFailure implements Recorder.
func (c *Collector) IncExtractionFailure(reason string) {
	c.extractionFailures.WithLabelValues(reason).Inc()
}

// IncActivityPublished implements Recorder.
func (c *Collector) IncActivityPublished(status string) {
	c.activityPublished.WithLabelValues(status).Inc()
}

// RecordHTTPStatus implements Recorder.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
