package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/listings/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(RequestCount.WithLabelValues("/api/listings/:id", "GET", "404"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/listings/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	after := testutil.ToFloat64(RequestCount.WithLabelValues("/api/listings/:id", "GET", "404"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "celumarket_http_requests_total")
}
