package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpinetwork/backend-sub000/internal/observability"
	quartershttp "github.com/kpinetwork/backend-sub000/internal/quarters/http"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(RouterParams{Logger: testLogger(), Config: &Config{RateLimitPerMinute: 10}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestRouterEchoesRequestID(t *testing.T) {
	router := NewRouter(RouterParams{Logger: testLogger()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestRouterReadiness(t *testing.T) {
	router := NewRouter(RouterParams{Logger: testLogger(), DB: stubPinger{err: errors.New("down")}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	router = NewRouter(RouterParams{Logger: testLogger(), DB: stubPinger{}})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterMountsQuartersAndMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Logger:          testLogger(),
		Metrics:         metrics,
		QuartersHandler: quartershttp.NewHandler(testLogger(), nil, nil, ""),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/quarters/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `kpi_http_requests_total{code="200",route="/reports/quarters/metrics"} 1`)
}

func TestRouterRateLimits(t *testing.T) {
	router := NewRouter(RouterParams{Logger: testLogger(), Config: &Config{RateLimitPerMinute: 1}})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
