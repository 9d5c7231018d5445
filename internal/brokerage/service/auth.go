package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/revocation"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/cryptox"
	"github.com/aussiebroadwan/brokerage/pkg/jwtx"
	"github.com/aussiebroadwan/brokerage/pkg/metricsx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// TokenConfig holds the token lifetimes. Zero values fall back to the jwtx
// defaults (1 hour and 7 days).
type TokenConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c TokenConfig) accessTTL() time.Duration {
	if c.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return c.AccessTTL
}

func (c TokenConfig) refreshTTL() time.Duration {
	if c.RefreshTTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return c.RefreshTTL
}

// dummyHash is compared against when the email is unknown so that branch
// costs one bcrypt verification like the wrong-password branch.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("brokerage-timing-equaliser")
	return h
})

// Authenticator checks email/password pairs against the credential store.
type Authenticator struct {
	Store   store.Store
	Metrics *metricsx.Metrics
}

// Authenticate returns the stored user when password matches. Unknown emails
// and wrong passwords both return ErrAuthFailure.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	u, err := a.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		cryptox.VerifyPassword(password, dummyHash())
		l.Warn("login failed", slog.String("email", email), slog.String("reason", "unknown_email"))
		a.Metrics.RecordAuth("authenticate", "failure")
		return domain.User{}, ErrAuthFailure
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		l.Warn("login failed", slog.String("email", email), slog.String("reason", "bad_password"))
		a.Metrics.RecordAuth("authenticate", "failure")
		return domain.User{}, ErrAuthFailure
	}

	if cryptox.NeedsRehash(u.PasswordHash) {
		a.rehash(ctx, u, password)
	}

	a.Metrics.RecordAuth("authenticate", "success")
	return u, nil
}

// rehash upgrades a hash made with an older cost. Failures are logged only;
// the login itself already succeeded.
func (a *Authenticator) rehash(ctx context.Context, u domain.User, password string) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to rehash password", slog.String("user_id", u.ID), slog.Any("error", err))
		return
	}
	if err := a.Store.Users().UpdatePassword(ctx, u.ID, hash, u.TokensValidAfter); err != nil {
		l.Error("failed to store rehashed password", slog.String("user_id", u.ID), slog.Any("error", err))
	}
}

// SessionIssuer mints access/refresh pairs.
type SessionIssuer struct {
	Codec    *jwtx.Codec
	Store    store.Store
	Denylist revocation.Denylist
	Config   TokenConfig
	Metrics  *metricsx.Metrics
}

// Issue signs an access token and a refresh token for u. Both carry the
// user's email as subject and the current role snapshot.
func (s *SessionIssuer) Issue(ctx context.Context, u domain.User) (domain.TokenPair, error) {
	access, _, err := s.Codec.Encode(jwtx.NewClaims(u.Email, u.Roles, jwtx.ScopeAccess), s.Config.accessTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, _, err := s.Codec.Encode(jwtx.NewClaims(u.Email, u.Roles, jwtx.ScopeRefresh), s.Config.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    int(s.Config.accessTTL().Seconds()),
		Roles:        u.Roles,
	}, nil
}

// Reissue exchanges a refresh token for a fresh pair. Roles are re-read from
// the store, so role changes apply from the next refresh on. The previous
// access token is left alone and stays valid until it expires.
func (s *SessionIssuer) Reissue(ctx context.Context, refreshToken string) (domain.TokenPair, domain.User, error) {
	u, _, err := resolveToken(ctx, s.Codec, s.Store, s.Denylist, refreshToken, jwtx.ScopeRefresh)
	if err != nil {
		s.Metrics.RecordAuth("refresh", outcome(err))
		return domain.TokenPair{}, domain.User{}, err
	}

	pair, err := s.Issue(ctx, u)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	s.Metrics.RecordAuth("refresh", "success")
	s.Metrics.RecordIssued("refresh")
	return pair, u, nil
}

// Logout denies the access token described by access and, when it is a
// valid refresh token of the same account, refreshToken. An unusable
// refresh token is ignored.
func (s *SessionIssuer) Logout(ctx context.Context, u domain.User, access jwtx.Claims, refreshToken string) error {
	if s.Denylist == nil {
		return nil
	}

	if err := s.Denylist.Revoke(ctx, access.ID, access.ExpiresAtTime()); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	claims, err := s.Codec.Decode(refreshToken)
	if err != nil || !claims.HasScope(jwtx.ScopeRefresh) || claims.Subject != u.Email {
		slogx.FromContext(ctx).Debug("ignoring unusable refresh token on logout")
		return nil
	}
	if err := s.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// Authorizer resolves bearer access tokens to live accounts.
type Authorizer struct {
	Codec    *jwtx.Codec
	Store    store.Store
	Denylist revocation.Denylist
	Metrics  *metricsx.Metrics
}

// Authorize accepts only access-scoped tokens and re-reads the account on
// every call; a user deleted after issuance gets ErrUserNotFound.
func (a *Authorizer) Authorize(ctx context.Context, bearer string) (domain.User, error) {
	u, _, err := a.Authenticate(ctx, bearer)
	return u, err
}

// Authenticate is Authorize that also returns the verified claims.
func (a *Authorizer) Authenticate(ctx context.Context, bearer string) (domain.User, jwtx.Claims, error) {
	u, claims, err := resolveToken(ctx, a.Codec, a.Store, a.Denylist, bearer, jwtx.ScopeAccess)
	if err != nil {
		a.Metrics.RecordAuth("authorize", outcome(err))
		return domain.User{}, jwtx.Claims{}, err
	}
	a.Metrics.RecordAuth("authorize", "success")
	return u, claims, nil
}

// RequireRoles succeeds when u holds at least one of allowed, compared
// case-insensitively.
func RequireRoles(u domain.User, allowed ...string) error {
	for _, role := range allowed {
		if u.HasRole(strings.TrimSpace(role)) {
			return nil
		}
	}
	return ErrForbidden
}

// resolveToken decodes token, enforces scope, looks the subject up and
// applies both revocation checks: the account's password cutoff and the jti
// denylist.
func resolveToken(
	ctx context.Context,
	codec *jwtx.Codec,
	st store.Store,
	deny revocation.Denylist,
	token string,
	scope jwtx.Scope,
) (domain.User, jwtx.Claims, error) {
	l := slogx.FromContext(ctx)

	claims, err := codec.Decode(token)
	if err != nil {
		l.Debug("token rejected", slog.Any("error", err))
		return domain.User{}, jwtx.Claims{}, mapTokenError(err)
	}
	if !claims.HasScope(scope) {
		l.Warn("token used with the wrong scope",
			slog.String("subject", claims.Subject),
			slog.String("want", string(scope)),
			slog.String("got", string(claims.Scope)),
		)
		return domain.User{}, jwtx.Claims{}, ErrInvalidScope
	}

	u, err := st.Users().GetUserByEmail(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("token subject no longer exists", slog.String("subject", claims.Subject))
		return domain.User{}, jwtx.Claims{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, jwtx.Claims{}, fmt.Errorf("load user: %w", err)
	}

	if !u.TokensValidAfter.IsZero() && claims.IssuedAtTime().Before(u.TokensValidAfter) {
		l.Info("token predates password change", slog.String("subject", claims.Subject))
		return domain.User{}, jwtx.Claims{}, ErrRevokedToken
	}

	if deny != nil {
		revoked, err := deny.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.User{}, jwtx.Claims{}, fmt.Errorf("check denylist: %w", err)
		}
		if revoked {
			l.Info("revoked token presented", slog.String("subject", claims.Subject))
			return domain.User{}, jwtx.Claims{}, ErrRevokedToken
		}
	}

	return u, claims, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return ErrExpiredToken
	case errors.Is(err, jwtx.ErrMalformed):
		return ErrMalformedToken
	default:
		return ErrInvalidToken
	}
}

// outcome labels an auth error for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrInvalidScope):
		return "wrong_scope"
	case errors.Is(err, ErrRevokedToken):
		return "revoked"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrMalformedToken):
		return "invalid"
	default:
		return "error"
	}
}

// passwordCutoff is the tokens_valid_after value for a password changed at
// now. iat has second precision, so the cutoff is truncated to match;
// tokens minted right after the change stay valid.
func passwordCutoff(now time.Time) time.Time {
	return now.UTC().Truncate(time.Second)
}
