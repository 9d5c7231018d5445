package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/brokerage/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newCodec(t *testing.T, secret string, clock *fakeClock) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.Config{
		Secret:    secret,
		Algorithm: "HS256",
		Issuer:    "brokerage",
		Now:       clock.Now,
	})
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := jwtx.NewCodec(jwtx.Config{Algorithm: "HS256"})
		require.ErrorIs(t, err, jwtx.ErrMissingSecret)
	})

	t.Run("rejects non-hmac algorithms", func(t *testing.T) {
		for _, alg := range []string{"RS256", "none", "EdDSA", "HS1"} {
			_, err := jwtx.NewCodec(jwtx.Config{Secret: "s", Algorithm: alg})
			require.ErrorIs(t, err, jwtx.ErrUnsupportedAlg, alg)
		}
	})

	t.Run("accepts hmac family case-insensitively", func(t *testing.T) {
		for alg, want := range map[string]string{"": "HS256", "hs256": "HS256", "HS384": "HS384", "hs512": "HS512"} {
			c, err := jwtx.NewCodec(jwtx.Config{Secret: "s", Algorithm: alg})
			require.NoError(t, err)
			require.Equal(t, want, c.Algorithm())
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
	codec := newCodec(t, "test-secret", clock)

	tests := []struct {
		name  string
		sub   string
		roles []string
		scope jwtx.Scope
	}{
		{"access single role", "a@x.com", []string{"user"}, jwtx.ScopeAccess},
		{"refresh multi role", "b@x.com", []string{"user", "admin"}, jwtx.ScopeRefresh},
		{"no roles", "c@x.com", []string{}, jwtx.ScopeAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, stamped, err := codec.Encode(jwtx.NewClaims(tt.sub, tt.roles, tt.scope), time.Hour)
			require.NoError(t, err)
			require.Equal(t, 2, strings.Count(token, "."), "compact JWS has three segments")

			got, err := codec.Decode(token)
			require.NoError(t, err)
			require.Equal(t, tt.sub, got.Subject)
			require.ElementsMatch(t, tt.roles, got.Roles)
			require.Equal(t, tt.scope, got.Scope)
			require.True(t, got.HasScope(tt.scope))
			require.Equal(t, "brokerage", got.Issuer)
			require.Equal(t, stamped.ID, got.ID)
			require.NotEmpty(t, got.ID)
			require.WithinDuration(t, clock.now.Add(time.Hour), got.ExpiresAtTime(), 0)
			require.WithinDuration(t, clock.now, got.IssuedAtTime(), 0)
		})
	}
}

func TestDecodeExpiryBoundary(t *testing.T) {
	start := time.Unix(1_700_000_000, 0).UTC()
	clock := &fakeClock{now: start}
	codec := newCodec(t, "test-secret", clock)

	token, claims, err := codec.Encode(jwtx.NewClaims("a@x.com", []string{"user"}, jwtx.ScopeAccess), time.Hour)
	require.NoError(t, err)
	exp := claims.ExpiresAtTime()

	clock.now = exp.Add(-time.Second)
	_, err = codec.Decode(token)
	require.NoError(t, err, "one second before expiry is still valid")

	clock.now = exp
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrExpired, "the expiry instant itself is no longer valid")

	clock.now = exp.Add(time.Second)
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestDecodeFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
	codec := newCodec(t, "test-secret", clock)
	other := newCodec(t, "other-secret", clock)

	good, _, err := codec.Encode(jwtx.NewClaims("a@x.com", []string{"user"}, jwtx.ScopeAccess), time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Encode(jwtx.NewClaims("a@x.com", []string{"admin"}, jwtx.ScopeAccess), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "a@x.com", "exp": clock.now.Add(time.Hour).Unix(), "iss": "brokerage",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "a@x.com", "exp": clock.now.Add(time.Hour).Unix(), "iss": "brokerage",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@x.com", "iss": "brokerage",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@x.com", "exp": clock.now.Add(time.Hour).Unix(), "iss": "someone-else",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": clock.now.Add(time.Hour).Unix(), "iss": "brokerage",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", jwtx.ErrMalformed},
		{"garbage", "not.a.jwt", jwtx.ErrMalformed},
		{"two segments", parts[0] + "." + parts[1], jwtx.ErrMalformed},
		{"signed with another secret", foreign, jwtx.ErrInvalidSignature},
		{"tampered signature", tampered, jwtx.ErrInvalidSignature},
		{"different hmac algorithm", hs512, jwtx.ErrInvalidSignature},
		{"alg none", unsigned, jwtx.ErrInvalidSignature},
		{"missing exp", noExp, jwtx.ErrInvalidClaims},
		{"wrong issuer", wrongIssuer, jwtx.ErrInvalidClaims},
		{"missing subject", noSubject, jwtx.ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeValidation(t *testing.T) {
	codec := newCodec(t, "s", &fakeClock{now: time.Now()})

	_, _, err := codec.Encode(jwtx.NewClaims("", []string{"user"}, jwtx.ScopeAccess), time.Hour)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaims)

	_, _, err = codec.Encode(jwtx.NewClaims("a@x.com", nil, jwtx.ScopeAccess), 0)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaims)
}

func TestEncodeIssuesUniqueIDs(t *testing.T) {
	codec := newCodec(t, "s", &fakeClock{now: time.Unix(1_700_000_000, 0)})
	seen := map[string]bool{}
	for range 20 {
		_, c, err := codec.Encode(jwtx.NewClaims("a@x.com", nil, jwtx.ScopeAccess), time.Minute)
		require.NoError(t, err)
		require.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}
