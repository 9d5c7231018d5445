package service

import "errors"

// Auth failures. Every one of them ends the request; none is retried.
var (
	// ErrAuthFailure covers both an unknown email and a wrong password so
	// callers cannot enumerate accounts.
	ErrAuthFailure = errors.New("incorrect email or password")

	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
	ErrInvalidScope   = errors.New("token scope not accepted here")
	ErrRevokedToken   = errors.New("token revoked")

	// ErrUserNotFound means a valid token names an account that no longer
	// exists.
	ErrUserNotFound = errors.New("user not found")

	ErrForbidden = errors.New("insufficient role")

	// ErrWrongPassword is a bad current password on an authenticated
	// password change. The session itself stays valid.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// Account and CRUD failures.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRole         = errors.New("role not allowed")
	ErrEmptyUpdate         = errors.New("no fields to update")
	ErrNoReferralID        = errors.New("account has no referral id")
	ErrReferralNotFound    = errors.New("referral not found")
	ErrInvalidStatus       = errors.New("invalid referral status")
	ErrApplicationNotFound = errors.New("application not found")
	ErrNoApplications      = errors.New("no applications found for user")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidCode         = errors.New("invalid or expired verification code")
	ErrTooManyAttempts     = errors.New("too many attempts")
	ErrAlreadyVerified     = errors.New("email already verified")
)
