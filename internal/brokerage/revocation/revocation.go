// Package revocation keeps a denylist of token ids (jti) that were revoked
// before their natural expiry, typically by logout. Entries only need to
// outlive the token they name, so every backend drops them at the token's
// exp.
package revocation

import (
	"context"
	"time"
)

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

type Denylist interface {
	// Revoke denies jti until the given instant. Revoking an already
	// expired token is a no-op.
	Revoke(ctx context.Context, jti string, until time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// None accepts every token. Logout becomes a no-op.
type None struct{}

func (None) Revoke(context.Context, string, time.Time) error { return nil }
func (None) IsRevoked(context.Context, string) (bool, error) { return false, nil }
func (None) Ping(context.Context) error                      { return nil }
func (None) Close() error                                    { return nil }
