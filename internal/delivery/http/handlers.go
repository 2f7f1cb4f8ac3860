package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fleetpulse/telemetry/internal/service"
)

// HealthChecker reports inference service reachability
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	registry *service.BroadcastRegistry
	gateway  HealthChecker
	vehicles []string
}

// NewHandler creates a new handler
func NewHandler(registry *service.BroadcastRegistry, gateway HealthChecker, vehicles []string) *Handler {
	return &Handler{
		registry: registry,
		gateway:  gateway,
		vehicles: vehicles,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	inference := "ok"
	if err := h.gateway.Health(ctx); err != nil {
		inference = "unreachable"
	}

	return c.JSON(fiber.Map{
		"status":      "ok",
		"service":     "fleetpulse-telemetry",
		"version":     "1.0.0",
		"inference":   inference,
		"subscribers": h.registry.Count(),
	})
}

// GetVehicles returns the tracked vehicle ids
func (h *Handler) GetVehicles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.vehicles,
		"count":   len(h.vehicles),
	})
}

// TelemetryStream registers the websocket connection as a subscriber
// session and holds it open until the peer goes away. The stream is
// server-push only; inbound frames are read and discarded.
func (h *Handler) TelemetryStream(conn *websocket.Conn) {
	sess := newWSSession(conn)
	h.registry.Register(sess)
	defer h.registry.Unregister(sess.ID())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			sess.markClosed()
			return
		}
	}
}
