package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/caller-crm/internal/core/ports"
	"github.com/avatarctic/caller-crm/internal/infrastructure/httpserver/helpers"
	"github.com/avatarctic/caller-crm/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/avatarctic/caller-crm/test/mocks"
)

func TestVendorMiddleware_SetsConfiguredVendor(t *testing.T) {
	e := echo.New()
	m := middleware.NewVendorMiddleware("V1", logrus.New())
	var seen string
	h := m.ResolveVendor()(func(c echo.Context) error {
		seen, _ = helpers.GetVendorIDRaw(c)
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.VendorHeader, "V1")
	c := e.NewContext(req, httptest.NewRecorder())
	require.NoError(t, h(c))
	require.Equal(t, "V1", seen)
}

func TestVendorMiddleware_MismatchReturns403(t *testing.T) {
	e := echo.New()
	m := middleware.NewVendorMiddleware("V1", nil)
	h := m.ResolveVendor()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.VendorHeader, "V2")
	c := e.NewContext(req, httptest.NewRecorder())
	err := h(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, htErr.Code)
}

func TestRateLimitMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	e := echo.New()
	rl := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, subject ports.RateLimitSubject) (bool, int, int, time.Time, error) {
		return true, 5, 5, time.Now(), errors.New("redis down")
	}}
	m := middleware.NewRateLimitMiddleware(rl, nil)
	h := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	helpers.SetVendorID(c, "V1")
	require.NoError(t, h(c))
	require.Equal(t, "5", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitMiddleware_KeysByVendorAndClient(t *testing.T) {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	var seen []ports.RateLimitSubject
	rl := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, subject ports.RateLimitSubject) (bool, int, int, time.Time, error) {
		seen = append(seen, subject)
		return true, 1, 2, time.Now(), nil
	}}
	h := middleware.NewRateLimitMiddleware(rl, nil).Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, addr := range []string{"192.0.2.10:5100", "192.0.2.11:5100"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		c := e.NewContext(req, httptest.NewRecorder())
		helpers.SetVendorID(c, "V1")
		require.NoError(t, h(c))
	}
	require.Equal(t, []ports.RateLimitSubject{
		{VendorID: "V1", ClientIP: "192.0.2.10"},
		{VendorID: "V1", ClientIP: "192.0.2.11"},
	}, seen)
	require.NotEqual(t, seen[0].Key(), seen[1].Key())
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	e := echo.New()
	m := middleware.NewRateLimitMiddleware(nil, nil)
	h := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, h(c))
}

func TestMetricsMiddleware_RecordsHTTPErrorStatus(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"})
	m := middleware.NewMetricsMiddleware(total, duration)

	e := echo.New()
	e.Use(m.CollectHTTPMetrics())
	e.GET("/api/v1/contacts/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/contacts/C1", nil))

	require.Equal(t, 1.0, testutil.ToFloat64(total.WithLabelValues(http.MethodGet, "/api/v1/contacts/:id", "404")))
}
