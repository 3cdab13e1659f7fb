package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Task status label values.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Metrics holds Prometheus metrics for write tasks. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	recordsWritten *prometheus.CounterVec
	recordsDirty   *prometheus.CounterVec
	tasks          *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers writer metrics with the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txtwriter_records_written_total",
			Help: "Total number of records written by task",
		}, []string{"task"}),
		recordsDirty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txtwriter_records_dirty_total",
			Help: "Total number of records routed to the dirty collector by task",
		}, []string{"task"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txtwriter_tasks_total",
			Help: "Total number of finished write tasks by status",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txtwriter_task_duration_seconds",
			Help:    "Duration of write tasks by status",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.recordsWritten,
		m.recordsDirty,
		m.tasks,
		m.taskDuration,
	)

	return m
}

// RecordWritten increments the written records counter.
func (m *Metrics) RecordWritten(task string) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(task).Inc()
}

// RecordDirty increments the dirty records counter.
func (m *Metrics) RecordDirty(task string) {
	if m == nil {
		return
	}
	m.recordsDirty.WithLabelValues(task).Inc()
}

// TaskFinished records the outcome and duration of a task.
func (m *Metrics) TaskFinished(err error, d time.Duration) {
	if m == nil {
		return
	}
	status := StatusSucceeded
	if err != nil {
		status = StatusFailed
	}
	m.tasks.WithLabelValues(status).Inc()
	m.taskDuration.WithLabelValues(status).Observe(d.Seconds())
}

// WriteTextfile writes every metric gathered by registry to path in the
// Prometheus text exposition format.
func WriteTextfile(registry *prometheus.Registry, path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
