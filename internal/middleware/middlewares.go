// Package middleware holds the global and route-specific Echo middleware:
// request ids, request-scoped logging, tracing, authentication, rate
// limiting, panic recovery and the error handler that writes every error
// response.
package middleware

import (
	"github.com/deppfellow/gpthub/internal/server"
)

// Middlewares groups every middleware component used by the router.
type Middlewares struct {
	Global          *GlobalMiddlewares
	Auth            *AuthMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares builds every middleware. sessions backs RequireAuth.
func NewMiddlewares(s *server.Server, sessions SessionResolver) *Middlewares {
	nrApp := s.LoggerService.GetApplication()

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, sessions),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
