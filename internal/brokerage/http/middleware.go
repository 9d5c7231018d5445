package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// Authn resolves the bearer token with a and stores the live account in the
// request context. Failures never reach the wrapped handler.
func Authn(a *service.Authorizer) httpx.Middleware {
	return httpx.Authn(func(ctx context.Context, token string) (context.Context, error) {
		u, claims, err := a.Authenticate(ctx, token)
		if err != nil {
			return ctx, err
		}

		ctx = withCaller(ctx, u, claims)
		ctx = httpx.WithSubject(ctx, u.ID)
		return slogx.WithUser(ctx, u.ID, u.Email), nil
	}, writeError)
}

// RequireRoles lets a request through when the caller holds at least one of
// allowed (case-insensitive) and answers 403 otherwise. It must run after
// Authn.
func RequireRoles(allowed ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _, ok := callerFrom(r.Context())
			if !ok {
				writeError(w, r, service.ErrInvalidToken)
				return
			}

			if err := service.RequireRoles(u, allowed...); err != nil {
				slogx.FromContext(r.Context()).Warn("role check failed",
					"roles", u.Roles,
					"allowed", allowed,
					"path", r.URL.Path,
				)
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
