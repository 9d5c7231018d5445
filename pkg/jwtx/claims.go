package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes, overridden by service configuration.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Scope separates access tokens from refresh tokens. The codec treats it as
// an ordinary claim; callers decide which scope an operation accepts.
type Scope string

const (
	ScopeAccess  Scope = "access"
	ScopeRefresh Scope = "refresh"
)

// Claims carried by every brokerage token. Subject is the account email.
// Roles is a snapshot taken at issue time.
type Claims struct {
	jwt.RegisteredClaims

	Roles []string `json:"roles"`
	Scope Scope    `json:"scope"`
}

// NewClaims builds the caller-controlled part of a token. Expiry, issue time,
// issuer and token id are filled in by Codec.Encode.
func NewClaims(subject string, roles []string, scope Scope) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Roles:            slices.Clone(roles),
		Scope:            scope,
	}
}

// HasScope reports whether the token was minted for scope.
func (c Claims) HasScope(scope Scope) bool {
	return c.Scope == scope
}

// ExpiresAtTime returns the expiry instant, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAtTime returns the issue instant, or the zero time when absent.
func (c Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
