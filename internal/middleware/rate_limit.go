package middleware

import (
	"time"

	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitExpiry is how long an idle client's limiter is remembered.
const RateLimitExpiry = 3 * time.Minute

// RateLimitMiddleware throttles the public forms per client IP.
type RateLimitMiddleware struct {
	server *server.Server
}

// NewRateLimitMiddleware reads its limits from s.Config.Server when
// FormLimiter is called, so one instance serves every form route.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// FormLimiter limits form submissions per client IP using the server's
// form_rate_limit and form_rate_burst. A zero rate disables it.
func (r *RateLimitMiddleware) FormLimiter() echo.MiddlewareFunc {
	cfg := r.server.Config.Server
	if cfg.FormRateLimit <= 0 {
		return passthrough
	}

	burst := cfg.FormRateBurst
	if burst <= 0 {
		burst = 1
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.FormRateLimit),
			Burst:     burst,
			ExpiresIn: RateLimitExpiry,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("identifier", identifier).
				Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, please try again later")
		},
	})
}

// RecordRateLimitHit sends a RateLimitHit event to New Relic, if enabled.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
