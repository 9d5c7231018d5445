package http

import (
	"context"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/pkg/jwtx"
)

type callerKey struct{}

// caller is the account resolved from the bearer token, plus the token's
// verified claims (logout needs the jti and expiry).
type caller struct {
	user   domain.User
	claims jwtx.Claims
}

func withCaller(ctx context.Context, u domain.User, claims jwtx.Claims) context.Context {
	return context.WithValue(ctx, callerKey{}, caller{user: u, claims: claims})
}

func callerFrom(ctx context.Context) (domain.User, jwtx.Claims, bool) {
	c, ok := ctx.Value(callerKey{}).(caller)
	return c.user, c.claims, ok
}
