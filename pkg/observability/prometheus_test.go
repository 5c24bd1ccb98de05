package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func counterByLabel(f *dto.MetricFamily, label, value string) float64 {
	for _, m := range f.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestPrometheusName(t *testing.T) {
	assert.Equal(t, "planner_items_placed", PrometheusName(MetricItemsPlaced))
	assert.Equal(t, "plain", PrometheusName("plain"))
}

func TestPrometheusMetrics_Counter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.Counter(MetricItemsPlaced, 2, T("item_type", "task"))
	m.Counter(MetricItemsPlaced, 1, T("item_type", "break"), T("ignored", "x"))
	m.Counter("unknown.metric", 1)

	f := gatherFamily(t, reg, "planner_items_placed")
	assert.Equal(t, 2.0, counterByLabel(f, "item_type", "task"))
	assert.Equal(t, 1.0, counterByLabel(f, "item_type", "break"))
}

func TestPrometheusMetrics_GaugeAndTiming(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.Gauge(MetricOutboxLag, 4.5)
	m.Timing(MetricGenerationDuration, 250*time.Millisecond)

	lag := gatherFamily(t, reg, "planner_outbox_lag_seconds")
	assert.Equal(t, 4.5, lag.GetMetric()[0].GetGauge().GetValue())

	hist := gatherFamily(t, reg, "planner_plans_generation_duration")
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.25, hist.GetMetric()[0].GetHistogram().GetSampleSum(), 0.0001)
}

func TestPrometheusMetrics_ImplementsMetrics(t *testing.T) {
	var _ Metrics = NewPrometheusMetrics(prometheus.NewRegistry())
}
