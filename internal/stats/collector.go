// Package stats accumulates aggregate token and latency telemetry across
// documentation calls. The counters are observational: nothing in the
// orchestration path reads them back for decisions.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector tracks orchestrator-level and per-provider usage. Safe for
// concurrent use; fan-out branches record independently.
type Collector struct {
	tasks     atomic.Int64
	failures  atomic.Int64
	tokens    atomic.Int64
	latencyNS atomic.Int64

	providerCalls *prometheus.CounterVec
	providerToken *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	confidence    prometheus.Histogram
}

// Snapshot is a point-in-time copy of the aggregate counters.
type Snapshot struct {
	Tasks       int64
	Failures    int64
	TotalTokens int64
	AvgLatency  time.Duration
}

// NewCollector creates a collector and registers its metrics. A nil
// registerer keeps the atomic counters but skips Prometheus entirely
// (used by tests and embedded callers).
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intellidoc",
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerToken: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intellidoc",
			Name:      "provider_tokens_total",
			Help:      "Tokens consumed per provider.",
		}, []string{"provider"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intellidoc",
			Name:      "task_duration_seconds",
			Help:      "End-to-end documentation task duration by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"strategy"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "intellidoc",
			Name:      "result_confidence",
			Help:      "Confidence scores of returned results.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	if reg != nil {
		reg.MustRegister(c.providerCalls, c.providerToken, c.taskDuration, c.confidence)
	}
	return c
}

// RecordProviderCall records one provider call outcome.
func (c *Collector) RecordProviderCall(provider string, success bool, latency time.Duration, tokens int) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.providerCalls.WithLabelValues(provider, outcome).Inc()
	if tokens > 0 {
		c.providerToken.WithLabelValues(provider).Add(float64(tokens))
		c.tokens.Add(int64(tokens))
	}
}

// RecordTask records one completed documentation call.
func (c *Collector) RecordTask(strategy string, latency time.Duration, confidence float64, failed bool) {
	c.tasks.Add(1)
	c.latencyNS.Add(int64(latency))
	if failed {
		c.failures.Add(1)
		return
	}
	c.taskDuration.WithLabelValues(strategy).Observe(latency.Seconds())
	c.confidence.Observe(confidence)
}

// Stats returns a copy of the aggregate counters.
func (c *Collector) Stats() Snapshot {
	tasks := c.tasks.Load()
	snap := Snapshot{
		Tasks:       tasks,
		Failures:    c.failures.Load(),
		TotalTokens: c.tokens.Load(),
	}
	if tasks > 0 {
		snap.AvgLatency = time.Duration(c.latencyNS.Load() / tasks)
	}
	return snap
}
