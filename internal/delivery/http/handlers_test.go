package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpulse/telemetry/internal/service"
)

type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) Health(context.Context) error { return s.err }

func newTestApp(checker HealthChecker) *fiber.App {
	app := fiber.New()
	handler := NewHandler(service.NewBroadcastRegistry(), checker, []string{"CAR-001", "CAR-002"})
	SetupRoutes(app, handler)
	return app
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(&stubHealthChecker{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["inference"])
	assert.Equal(t, float64(0), body["subscribers"])
}

func TestHealthCheckInferenceUnreachable(t *testing.T) {
	app := newTestApp(&stubHealthChecker{err: errors.New("connection refused")})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unreachable", body["inference"])
}

func TestGetVehicles(t *testing.T) {
	app := newTestApp(&stubHealthChecker{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/vehicles", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"CAR-001", "CAR-002"}, body.Data)
	assert.Equal(t, 2, body.Count)
}

func TestTelemetryStreamRequiresUpgrade(t *testing.T) {
	app := newTestApp(&stubHealthChecker{})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/telemetry", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
