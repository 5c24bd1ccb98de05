package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricKind int

const (
	kindCounter metricKind = iota
	kindGauge
	kindHistogram
)

type metricSpec struct {
	kind    metricKind
	help    string
	labels  []string
	buckets []float64
}

var durationBuckets = prometheus.ExponentialBuckets(0.001, 2, 12) // 1ms to ~4s

var metricSpecs = map[string]metricSpec{
	MetricOperationTotal:    {kind: kindCounter, help: "Operations executed", labels: []string{"operation"}},
	MetricOperationErrors:   {kind: kindCounter, help: "Operations that returned an error", labels: []string{"operation"}},
	MetricOperationDuration: {kind: kindHistogram, help: "Operation duration in seconds", labels: []string{"operation"}, buckets: durationBuckets},

	MetricPlansGenerated:      {kind: kindCounter, help: "Daily plans generated", labels: []string{"style", "intensity"}},
	MetricGenerationSkipped:   {kind: kindCounter, help: "Generations skipped because another run held the lock", labels: nil},
	MetricGenerationDuration:  {kind: kindHistogram, help: "Plan generation duration in seconds", labels: nil, buckets: durationBuckets},
	MetricItemsPlaced:         {kind: kindCounter, help: "Plan items placed", labels: []string{"item_type"}},
	MetricItemsCompleted:      {kind: kindCounter, help: "Plan items marked completed", labels: []string{"item_type"}},
	MetricPlacementRejections: {kind: kindCounter, help: "Tasks the placement engine refused", labels: []string{"reason"}},
	MetricSuggestionFailures:  {kind: kindCounter, help: "Suggestion requests that failed", labels: nil},

	MetricHTTPRequests: {kind: kindCounter, help: "HTTP requests served", labels: []string{"method", "path", "status"}},
	MetricHTTPDuration: {kind: kindHistogram, help: "HTTP request duration in seconds", labels: []string{"method", "path"}, buckets: durationBuckets},

	MetricEventsPublished:    {kind: kindCounter, help: "Outbox events relayed to the broker", labels: []string{"routing_key"}},
	MetricEventsConsumed:     {kind: kindCounter, help: "Broker events handled", labels: []string{"routing_key", "status"}},
	MetricEventsFailed:       {kind: kindCounter, help: "Outbox publish attempts that failed", labels: []string{"routing_key"}},
	MetricEventsDeadLettered: {kind: kindCounter, help: "Outbox events moved to the dead letter state", labels: []string{"routing_key"}},
	MetricOutboxLag:          {kind: kindGauge, help: "Age in seconds of the oldest event in the last outbox batch", labels: nil},
}

// PrometheusMetrics exports the known metric names through a Prometheus
// registerer. Names it does not know are dropped, as are tags that are not
// declared labels of the metric.
type PrometheusMetrics struct {
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics registers every metric on reg. Registering twice on
// the same registerer panics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	m := &PrometheusMetrics{
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	for name, spec := range metricSpecs {
		promName := PrometheusName(name)
		switch spec.kind {
		case kindCounter:
			m.counters[name] = factory.NewCounterVec(prometheus.CounterOpts{Name: promName, Help: spec.help}, spec.labels)
		case kindGauge:
			m.gauges[name] = factory.NewGaugeVec(prometheus.GaugeOpts{Name: promName, Help: spec.help}, spec.labels)
		case kindHistogram:
			m.histograms[name] = factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    promName,
				Help:    spec.help,
				Buckets: spec.buckets,
			}, spec.labels)
		}
	}
	return m
}

// PrometheusName converts a dotted metric name to the exported form.
func PrometheusName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func labelsFor(name string, tags []Tag) prometheus.Labels {
	spec := metricSpecs[name]
	labels := make(prometheus.Labels, len(spec.labels))
	for _, l := range spec.labels {
		labels[l] = ""
	}
	for _, t := range tags {
		if _, ok := labels[t.Key]; ok {
			labels[t.Key] = t.Value
		}
	}
	return labels
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if vec, ok := m.counters[name]; ok {
		vec.With(labelsFor(name, tags)).Add(float64(value))
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	if vec, ok := m.gauges[name]; ok {
		vec.With(labelsFor(name, tags)).Set(value)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	if vec, ok := m.histograms[name]; ok {
		vec.With(labelsFor(name, tags)).Observe(value)
	}
}

// Timing observes the duration in seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.Histogram(name, duration.Seconds(), tags...)
}
