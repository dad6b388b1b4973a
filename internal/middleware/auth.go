package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// SessionResolver returns the verified caller of a request.
type SessionResolver interface {
	Session(ctx context.Context) (*model.Session, error)
}

// AuthMiddleware guards routes that need a signed-in Clerk user.
type AuthMiddleware struct {
	server   *server.Server
	sessions SessionResolver
}

// NewAuthMiddleware constructs the middleware. sessions turns the claims the
// Clerk middleware verified into a model.Session; in production it is
// *service.AuthService.
func NewAuthMiddleware(s *server.Server, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		sessions: sessions,
	}
}

// RequireAuth verifies the Clerk bearer token and stores the caller's id,
// role and permissions in the Echo context. The request logger is replaced by
// one carrying user_id and user_role, so every later log line of the request
// names the caller.
//
// A missing or invalid token never reaches next: Clerk's header middleware
// answers 401 through writeUnauthorized, and a token that parses but yields
// no session returns the resolver's error to the global error handler.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized))))(
		func(c echo.Context) error {
			start := time.Now()

			session, err := auth.sessions.Session(c.Request().Context())
			if err != nil {
				GetLogger(c).Warn().
					Err(err).
					Dur("duration", time.Since(start)).
					Msg("request without a verified session")

				return err
			}

			c.Set(UserIDKey, session.UserID)
			c.Set(UserRoleKey, session.Role)
			c.Set(PermissionsKey, session.Permissions)

			userLogger := GetLogger(c).With().
				Str("user_id", session.UserID).
				Str("user_role", session.Role).
				Logger()
			setRequestLogger(c, userLogger)

			userLogger.Debug().
				Dur("duration", time.Since(start)).
				Msg("user authenticated")

			return next(c)
		})
}

// writeUnauthorized runs outside Echo, so it writes the error body itself.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized").Response()); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("rejected request with an invalid session token")
}
