package domain

import "time"

// PasswordReset is a pending reset link. Only the SHA-256 fingerprint of the
// mailed token is stored.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// EmailVerification holds the TOTP secret behind a mailed verification code.
// One row per user; a new request replaces the old one.
type EmailVerification struct {
	UserID    string
	Secret    string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}
