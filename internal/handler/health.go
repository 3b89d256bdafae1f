package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/statloop/fplsync/internal/middleware"
	"github.com/statloop/fplsync/internal/server"

	"github.com/labstack/echo/v4"
)

// HealthHandler exposes the system health endpoint monitors poll.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(s)}
}

// CheckHealth reports overall status plus per-dependency checks for the
// database and redis.
//
// Returns 200 when the database is reachable, 503 otherwise. An unreachable
// redis is reported in the checks but does not fail the endpoint: reads
// degrade to the store and the service stays useful.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c)

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      make(map[string]interface{}),
	}
	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbStart := time.Now()
	if err := h.server.DB.Pool.Ping(ctx); err != nil {
		checks["database"] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": time.Since(dbStart).String(),
			"error":         err.Error(),
		}
		isHealthy = false

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check failed")
	} else {
		checks["database"] = map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(dbStart).String(),
		}
	}

	redisStart := time.Now()
	if err := h.server.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": time.Since(redisStart).String(),
			"error":         err.Error(),
		}

		logger.Warn().
			Err(err).
			Dur("response_time", time.Since(redisStart)).
			Msg("redis health check failed")
	} else {
		checks["redis"] = map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(redisStart).String(),
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}
