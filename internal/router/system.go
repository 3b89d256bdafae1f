package router

import (
	"github.com/statloop/fplsync/internal/handler"

	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the business
// surface, kept outside the versioned API group.
func registerSystemRoutes(e *echo.Echo, h *handler.Handlers) {
	// Health status endpoint (used by orchestrators/monitors).
	e.GET("/status", h.Health.CheckHealth)
}
