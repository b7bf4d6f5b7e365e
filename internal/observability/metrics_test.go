package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/orders", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/orders", "GET", 200, 30*time.Millisecond)
	m.RecordError("/orders", "POST", "STOCK_ERROR")
	m.RecordEvent("stock_decrement_failed")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, "/orders|GET|200", snap.Requests[0].Key)
	assert.Equal(t, int64(2), snap.Requests[0].Count)
	assert.InDelta(t, 20.0, snap.Requests[0].AvgLatencyMs, 0.01)
	assert.Equal(t, int64(1), snap.Errors["/orders|POST|STOCK_ERROR"])
	assert.Equal(t, int64(1), snap.Events["stock_decrement_failed"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordEvent("x")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/orders/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, "/orders/:id|GET|204", snap.Requests[0].Key)
}
