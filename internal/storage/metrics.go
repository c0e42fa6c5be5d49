package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metric records one store operation.
type Metric struct {
	Operation string
	Backend   string
	Duration  time.Duration
	Err       error
}

// MetricsCollector receives store operation metrics.
type MetricsCollector interface {
	Record(m Metric)
}

// recordMetric sends an operation metric when a collector is set.
func recordMetric(c MetricsCollector, op, backend string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.Record(Metric{Operation: op, Backend: backend, Duration: time.Since(start), Err: err})
}

// Collector accumulates metrics in memory, enough for the tools to
// log a summary at exit.
type Collector struct {
	mu      sync.Mutex
	metrics []Metric
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one metric.
func (c *Collector) Record(m Metric) {
	c.mu.Lock()
	c.metrics = append(c.metrics, m)
	c.mu.Unlock()

	event := log.Debug().
		Str("operation", m.Operation).
		Str("backend", m.Backend).
		Dur("duration", m.Duration)
	if m.Err != nil {
		event = event.Err(m.Err)
	}
	event.Msg("Store operation finished")
}

// Metrics returns a copy of everything recorded so far.
func (c *Collector) Metrics() []Metric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Metric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Summary aggregates durations and failures per operation.
func (c *Collector) Summary() map[string]OperationStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := make(map[string]OperationStats)
	for _, m := range c.metrics {
		stats := summary[m.Operation]
		stats.Count++
		stats.Total += m.Duration
		if m.Err != nil {
			stats.Failures++
		}
		summary[m.Operation] = stats
	}
	return summary
}

// OperationStats summarizes one operation type.
type OperationStats struct {
	Count    int
	Failures int
	Total    time.Duration
}

// Avg returns the mean duration, zero when nothing was recorded.
func (o OperationStats) Avg() time.Duration {
	if o.Count == 0 {
		return 0
	}
	return o.Total / time.Duration(o.Count)
}
