// Package metrics counts transformation cycles and their outcomes.
//
// The tool is a batch job, not a server, so metrics are collected in a
// private registry and written out in the Prometheus text format at the end
// of a run, ready for the node exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cdf2fhir"

// Cycle outcomes.
const (
	OutcomeOK           = "ok"
	OutcomePrecondition = "precondition"
	OutcomeError        = "error"
)

// Metrics holds the collectors of one run. A nil *Metrics discards every
// observation.
type Metrics struct {
	registry  *prometheus.Registry
	cycles    *prometheus.CounterVec
	records   prometheus.Counter
	duration  prometheus.Histogram
	templates prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Transformation cycles by outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records produced by successful cycles.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one transformation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		templates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prepared_targets",
			Help:      "Targets bound by the last preparation.",
		}),
	}
	m.registry.MustRegister(m.cycles, m.records, m.duration, m.templates)
	return m
}

// Registry exposes the collectors for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records one finished cycle.
func (m *Metrics) ObserveCycle(outcome string, records int, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.records.Add(float64(records))
	m.duration.Observe(d.Seconds())
}

// SetPreparedTargets records how many targets are bound.
func (m *Metrics) SetPreparedTargets(n int) {
	if m == nil {
		return
	}
	m.templates.Set(float64(n))
}

// WriteTextfile writes every collector to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
