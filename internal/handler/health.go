package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/formapplication/internal/config"
	"github.com/deppfellow/formapplication/internal/middleware"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	name string
	// required checks make the service unhealthy when they fail.
	required bool
	ping     func(ctx context.Context) error
}

// checks lists the enabled dependency checks. The in-memory driver has no
// connection to ping and Redis is optional.
func (h *HealthHandler) checks() []healthCheck {
	obs := h.server.Config.Observability
	var checks []healthCheck

	if obs.HealthCheckEnabled("database") {
		switch {
		case h.server.DB != nil:
			checks = append(checks, healthCheck{name: "database", required: true, ping: h.server.DB.Ping})
		case h.server.Mongo != nil:
			checks = append(checks, healthCheck{name: "database", required: true, ping: h.server.Mongo.Ping})
		case h.server.Config.Database.Driver == config.DriverMemory:
			checks = append(checks, healthCheck{name: "database", required: true, ping: func(context.Context) error { return nil }})
		}
	}

	if obs.HealthCheckEnabled("redis") && h.server.Redis != nil {
		checks = append(checks, healthCheck{name: "redis", ping: func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}})
	}

	return checks
}

// CheckHealth reports the status of every enabled dependency check. It
// answers 200 when all required checks pass and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := h.server.Config.Observability.HealthChecks.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	results := make(map[string]interface{})
	isHealthy := true

	for _, check := range h.checks() {
		result, ok := h.runCheck(c.Request().Context(), logger, check, timeout)
		results[check.name] = result
		if !ok && check.required {
			isHealthy = false
		}
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"driver":      h.server.Config.Database.Driver,
		"checks":      results,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordFailure(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) runCheck(parent context.Context, logger zerolog.Logger, check healthCheck, timeout time.Duration) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	checkStart := time.Now()
	err := check.ping(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		logger.Error().
			Err(err).
			Str("check", check.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordFailure(map[string]interface{}{
			"check_type":       check.name,
			"operation":        "health_check",
			"error_type":       check.name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}, false
	}

	return map[string]interface{}{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}, true
}

func (h *HealthHandler) recordFailure(attributes map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attributes)
	}
}
