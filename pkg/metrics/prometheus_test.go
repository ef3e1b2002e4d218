package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordRun("success", 2*time.Second, 38.19)
	m.RecordRun("error", 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
	assert.Equal(t, 38.19, testutil.ToFloat64(m.BestFitness))
}

func TestRecordGeneration(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordGeneration(true)
	m.RecordGeneration(false)
	m.RecordGeneration(false)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.GenerationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImprovementTotal))
}

func TestIndependentRegistries(t *testing.T) {
	// a second instance must not panic on duplicate registration
	a, b := NewPrometheusMetrics(), NewPrometheusMetrics()
	a.RecordCacheHit()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheHitsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHitsTotal))
}

func TestHandler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordRequest("/optimize", "200")
	m.RecordStoreFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `dosage_http_requests_total{path="/optimize",status="200"} 1`)
	assert.Contains(t, body, "dosage_store_failures_total 1")
}
