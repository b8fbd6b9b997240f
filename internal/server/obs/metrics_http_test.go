package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	healthy := createMetricsServer(":0", func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	sick := createMetricsServer(":0", func(ctx context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	sick.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := createMetricsServer(":0", func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest(http.MethodGet, http.StatusOK, 25*time.Millisecond)
	m.ObserveRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveResolution("success")
	m.ObserveResolution("link_expired")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"shelfmark_http_requests_total",
		"shelfmark_http_request_duration_seconds",
		"shelfmark_link_resolutions_total",
	} {
		if !names[want] {
			t.Fatalf("metric %s not registered", want)
		}
	}

	for _, f := range families {
		if !strings.HasPrefix(f.GetName(), "shelfmark_http_requests_total") {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		assert.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
	}
}
