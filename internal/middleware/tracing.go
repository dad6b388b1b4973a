package middleware

import (
	"github.com/deppfellow/gpthub/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware ties requests to New Relic transactions. Without an
// application both middlewares are no-ops.
type TracingMiddleware struct {
	nrApp *newrelic.Application
}

// NewTracingMiddleware constructs the tracing middleware. nrApp is nil when
// New Relic is not configured, as in local development and tests.
func NewTracingMiddleware(nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{nrApp: nrApp}
}

// NewRelicMiddleware starts a transaction per request and stores it in the
// request context, where EnhanceTracing and EnhanceContext find it.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passthrough
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing annotates the transaction with the request id, route and
// caller, and with the error kind when the request failed.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passthrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.route", c.Path())
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// RequireAuth runs on the route, so the user is known only now.
			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}

			if err != nil {
				txn.AddAttribute("error.kind", string(sqlerr.Classify(err)))
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			txn.AddAttribute("http.status_code", statusFromError(c.Response().Status, err))
			return err
		}
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
