package jwtx

import "errors"

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrInvalidClaims    = errors.New("jwtx: invalid claims")

	ErrUnsupportedAlg = errors.New("jwtx: unsupported signing algorithm")
	ErrMissingSecret  = errors.New("jwtx: signing secret is required")
)
