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

func TestCounters(t *testing.T) {
	m := New()
	m.Redemption("success")
	m.Redemption("success")
	m.Redemption("out_of_stock")
	m.Points("SPEND", 300)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.redemptions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues("out_of_stock")))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.points.WithLabelValues("SPEND")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Redemption("success")
		m.Participation("success")
		m.Points("EARN", 10)
		m.Notification("MOCK", "SENT")
		m.ObserveRequest("/x", http.MethodGet, 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/rewards", http.MethodGet, 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rewards_http_requests_total{method="GET",route="/api/v1/rewards",status="200"} 1`)
}
