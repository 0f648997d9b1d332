package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus_NilConfig(t *testing.T) {
	_, err := NewPrometheus(nil)
	require.ErrorIs(t, err, ErrNilConfig)
}

func TestPrometheusCollector_CustomMetrics(t *testing.T) {
	collector, err := NewPrometheus(DefaultConfig())
	require.NoError(t, err)

	collector.Counter("scheduler_fires_total", map[string]string{"schedule": "NIGHTLY"})
	collector.Counter("scheduler_fires_total", map[string]string{"schedule": "NIGHTLY"})
	collector.Histogram("delivery_duration_seconds", 0.05, map[string]string{"schedule": "NIGHTLY"})
	collector.Gauge("scheduler_running_jobs", 2, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	collector.GetHandler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "quartzkit_scheduler_fires_total")
	assert.Contains(t, body, "quartzkit_delivery_duration_seconds")
	assert.Contains(t, body, "quartzkit_scheduler_running_jobs")
}

func TestPrometheusCollector_GetPath(t *testing.T) {
	collector, err := NewPrometheus(&Config{})
	require.NoError(t, err)
	assert.Equal(t, "/metrics", collector.GetPath())

	collector2, err := NewPrometheus(&Config{Path: "/internal/metrics"})
	require.NoError(t, err)
	assert.Equal(t, "/internal/metrics", collector2.GetPath())
}

func TestExtractLabels_StableOrder(t *testing.T) {
	names, values := extractLabels(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []string{"1", "2", "3"}, values)
}
