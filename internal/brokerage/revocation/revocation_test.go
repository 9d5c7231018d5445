package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, m.Revoke(ctx, "b", now.Add(time.Hour)))
	require.NoError(t, m.Revoke(ctx, "old", now.Add(-time.Second)))
	require.NoError(t, m.Revoke(ctx, "", now.Add(time.Hour)))
	require.Equal(t, 2, m.Len())

	revoked, err := m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = m.IsRevoked(ctx, "old")
	require.NoError(t, err)
	require.False(t, revoked)

	now = now.Add(2 * time.Minute)

	revoked, err = m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.False(t, revoked, "entry must lapse with the token")

	require.NoError(t, m.Revoke(ctx, "c", now.Add(-time.Minute)))
	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	now = now.Add(2 * time.Hour)
	n, err = m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 0, m.Len())
}

func TestNone(t *testing.T) {
	ctx := context.Background()
	var d Denylist = None{}

	require.NoError(t, d.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.Ping(ctx))
	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(30*time.Second)))
	require.NoError(t, r.Revoke(ctx, "jti-expired", time.Now().Add(-time.Second)))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	require.False(t, revoked)
	require.False(t, mr.Exists(keyPrefix+"jti-expired"))

	ttl := mr.TTL(keyPrefix + "jti-1")
	require.Greater(t, ttl, 29*time.Second)
	require.LessOrEqual(t, ttl, 31*time.Second)

	mr.FastForward(time.Minute)

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = r.Close() })
	mr.Close()

	_, err := r.IsRevoked(context.Background(), "jti")
	require.Error(t, err)
	require.Error(t, r.Ping(context.Background()))
}
