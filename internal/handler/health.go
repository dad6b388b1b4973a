package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/gpthub/internal/middleware"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

// HealthCheck is one dependency check.
type HealthCheck struct {
	Name string
	// Critical checks turn the overall status unhealthy. Redis is not
	// critical: the directory cache falls back to the database.
	Critical bool
	Check    func(ctx context.Context) error
}

// HealthHandler serves GET /status.
type HealthHandler struct {
	Handler
	checks []HealthCheck
}

// NewHealthHandler checks the dependencies listed in
// observability.health_checks.checks.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return NewHealthHandlerWithChecks(s, defaultHealthChecks(s)...)
}

// NewHealthHandlerWithChecks runs exactly checks, ignoring the configured
// list. Tests use it to inject failing dependencies.
func NewHealthHandlerWithChecks(s *server.Server, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
	}
}

func defaultHealthChecks(s *server.Server) []HealthCheck {
	obs := s.Config.Observability
	if obs == nil || !obs.HealthChecks.Enabled {
		return nil
	}

	var checks []HealthCheck
	for _, name := range obs.HealthChecks.Checks {
		switch name {
		case "database":
			if s.DB != nil {
				checks = append(checks, HealthCheck{Name: name, Critical: true, Check: s.DB.Pool.Ping})
			}
		case "redis":
			if s.Redis != nil {
				checks = append(checks, HealthCheck{Name: name, Check: func(ctx context.Context) error {
					return s.Redis.Ping(ctx).Err()
				}})
			}
		default:
			s.Logger.Warn().Str("check", name).Msg("unknown health check ignored")
		}
	}
	return checks
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return defaultHealthTimeout
}

// CheckHealth answers 200 when every critical check passes and 503
// otherwise. Every check result is reported under "checks".
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]map[string]any, len(h.checks))
	isHealthy := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
		checkStart := time.Now()
		err := check.Check(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			checks[check.Name] = map[string]any{
				"status":        "unhealthy",
				"response_time": elapsed.String(),
				"error":         err.Error(),
			}
			if check.Critical {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.Name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			h.recordEvent(map[string]any{
				"check_type":       check.Name,
				"operation":        "health_check",
				"error_type":       check.Name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		checks[check.Name] = map[string]any{
			"status":        "healthy",
			"response_time": elapsed.String(),
		}

		logger.Debug().
			Str("check", check.Name).
			Dur("response_time", elapsed).
			Msg("health check passed")
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("service unhealthy")

		h.recordEvent(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordEvent(attrs map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
