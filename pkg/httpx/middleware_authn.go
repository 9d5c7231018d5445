package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrMissingBearer is passed to the ErrorHandler when the request carries no
// usable Authorization header.
var ErrMissingBearer = errors.New("httpx: missing bearer token")

// AuthenticateFunc validates a bearer token and returns a context that
// carries whatever the application resolved for the caller.
type AuthenticateFunc func(ctx context.Context, token string) (context.Context, error)

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Authn rejects requests without a valid bearer token before they reach next.
// The handler never runs on failure.
func Authn(authenticate AuthenticateFunc, onError ErrorHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				onError(w, r, ErrMissingBearer)
				return
			}

			ctx, err := authenticate(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively per RFC 6750.
func BearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// WriteBearerChallenge sets an RFC 6750 WWW-Authenticate header. code is the
// bearer error code ("invalid_token", "invalid_grant", "insufficient_scope").
func WriteBearerChallenge(w http.ResponseWriter, code, description string) {
	v := `Bearer realm="brokerage"`
	if code != "" {
		v += `, error="` + code + `"`
	}
	if description != "" {
		v += `, error_description="` + strings.ReplaceAll(description, `"`, `'`) + `"`
	}
	w.Header().Set("WWW-Authenticate", v)
}
