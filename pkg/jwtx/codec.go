package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds what a Codec needs. It is built once from service
// configuration and passed in explicitly, so tests can run codecs with
// different secrets side by side.
type Config struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	Issuer    string // optional; enforced on decode when set

	// Now overrides the clock, mainly for expiry tests.
	Now func() time.Time
}

// Codec signs and verifies HMAC JWTs with a shared secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		secret: []byte(cfg.Secret),
		method: method,
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

func hmacMethod(alg string) (jwt.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}

// Algorithm returns the JWS "alg" this codec signs with.
func (c *Codec) Algorithm() string { return c.method.Alg() }

// Encode stamps claims with iat, exp (now+ttl), iss and a fresh jti, then
// signs them. The stamped claims are returned alongside the compact token.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, Claims, error) {
	if claims.Subject == "" {
		return "", Claims{}, fmt.Errorf("%w: subject is required", ErrInvalidClaims)
	}
	if ttl <= 0 {
		return "", Claims{}, fmt.Errorf("%w: ttl must be positive", ErrInvalidClaims)
	}

	now := c.now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.ID = idx.NewAt(now).String()
	if c.issuer != "" {
		claims.Issuer = c.issuer
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, claims, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
// Failures map onto ErrMalformed, ErrInvalidSignature, ErrExpired or
// ErrInvalidClaims. Scope is not checked here.
func (c *Codec) Decode(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
