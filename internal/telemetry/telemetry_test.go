package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatheredValue sums every sample of the named metric family.
func gatheredValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		return total
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.NodeCreated("r", "element")
		m.RegionRendered("r")
		m.SetupFailed("r", "x")
		m.HotUpdate()
		m.HotRebind()
		m.HotInvalidation()
		m.DevClientConnected()
		m.DevClientDisconnected()
		m.DevBroadcast("reload")
	})
	assert.Nil(t, m.Registry())
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.NodeCreated("ssr", "element")
	m.NodeCreated("ssr", "element")
	m.SetupFailed("ssr", "broken")
	m.HotUpdate()
	m.HotInvalidation()
	m.DevClientConnected()

	assert.Equal(t, 2.0, gatheredValue(t, reg, "test_nodes_created_total"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "test_extension_setup_failures_total"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "test_hot_updates_total"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "test_hot_invalidations_total"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "test_dev_clients"))
	assert.Same(t, reg, m.Registry())
}

func TestMetricsInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.HotRebind()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weave_hot_rebinds_total 1")
}

func TestSpanHelpers(t *testing.T) {
	ctx, span := StartSpan(context.Background(), nil, "test")
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })

	_, span = StartSpan(context.Background(), Tracer(), "ok")
	assert.NotPanics(t, func() { EndSpan(span, nil) })
}
