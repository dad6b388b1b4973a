package middleware

import (
	"github.com/deppfellow/gpthub/internal/logger"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	UserIDKey      = "user_id"
	UserRoleKey    = "user_role"
	LoggerKey      = "logger"
	PermissionsKey = "permissions"
)

// ContextEnhancer attaches a request-scoped logger to every request.
//
// The logger lives in two places: the Echo context, for handlers and
// middlewares (see GetLogger), and the request's context.Context through
// zerolog's WithContext, for the service layer, which only sees a
// context.Context and reads it back with zerolog.Ctx. Both copies carry the
// same fields.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer returns the enhancer for s. The base logger is
// s.Logger; every request logger is derived from it.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext builds a logger carrying the request id, method, route, client
// ip and New Relic trace ids. It must run after RequestID and the New Relic
// middleware for those fields to be present. RequireAuth later adds the
// caller's id and role to the same logger.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setRequestLogger(c, contextLogger)

			return next(c)
		}
	}
}

// setRequestLogger replaces the request logger in both the Echo context and
// the request context.
func setRequestLogger(c echo.Context, l zerolog.Logger) {
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
	c.Set(LoggerKey, &l)
}

// GetUserID returns the id RequireAuth stored for the caller, or "" on
// routes that are not behind it.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger outside
// EnhanceContext.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}
	logger := zerolog.Nop()
	return &logger
}
