package http

import (
	"context"

	"sharebite/internal/domain"
	"sharebite/internal/security"
)

type claimsKey struct{}

func withClaims(ctx context.Context, claims *security.OrgClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the access token claims set by the auth
// middleware.
func ClaimsFromContext(ctx context.Context) (*security.OrgClaims, error) {
	claims, ok := ctx.Value(claimsKey{}).(*security.OrgClaims)
	if !ok || claims == nil {
		return nil, domain.NewAuthenticationError("Access denied. No token provided.")
	}
	return claims, nil
}
