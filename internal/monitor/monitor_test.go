package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/krnews/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealth(t *testing.T) {
	m := &metrics.Metrics{IsHealthy: true}
	r := NewRouter(m)

	w, body := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	m.SetError("webhook down")
	w, body = get(t, r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "webhook down", body["last_error"])
}

func TestMetrics(t *testing.T) {
	m := &metrics.Metrics{IsHealthy: true}
	m.RecordSummary(true)
	m.RecordSummary(false)

	w, body := get(t, NewRouter(m), "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["articles_processed"])
	assert.Equal(t, float64(1), body["summaries_failed"])
}
