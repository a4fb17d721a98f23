package httpserver

import (
	"calendarback/pkg/config"
	"calendarback/pkg/metrics"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiber_MetricsUseRoutePath(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	app := NewFiber(config.Config{}, m)
	app.Get("/odata/Calendar/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, target := range []string{"/odata/Calendar/1", "/odata/Calendar/2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.API.HTTPRequestsTotal.WithLabelValues("GET", "/odata/Calendar/:id", "200")))
}

func TestNewFiber_ErrorHandlerKeepsStatus(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	app := NewFiber(config.Config{}, m)
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"message"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestNormalizeHTTPMethod(t *testing.T) {
	assert.Equal(t, "GET", normalizeHTTPMethod(" get "))
	assert.Equal(t, "OTHER", normalizeHTTPMethod("PROPFIND"))
}
