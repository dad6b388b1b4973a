package service

import (
	"context"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/model"
)

// ErrNoSession is returned by Session when the request carries no verified
// Clerk claims.
var ErrNoSession = errs.NewUnauthorizedError("Unauthorized")

// AuthService reads Clerk sessions. Token verification itself happens in
// the Clerk HTTP middleware, which needs the key set here.
type AuthService struct{}

// NewAuthService installs secretKey as the process-wide Clerk key. It must
// be built before the router serves requests.
func NewAuthService(secretKey string) *AuthService {
	clerk.SetKey(secretKey)
	return &AuthService{}
}

// Session returns the caller verified by the Clerk middleware for ctx.
func (a *AuthService) Session(ctx context.Context) (*model.Session, error) {
	claims, ok := clerk.SessionClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return nil, ErrNoSession
	}

	return &model.Session{
		UserID:      claims.Subject,
		Role:        claims.ActiveOrganizationRole,
		Permissions: claims.ActiveOrganizationPermissions,
	}, nil
}
