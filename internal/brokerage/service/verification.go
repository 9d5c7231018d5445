package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultVerificationTTL = 10 * time.Minute

	// MaxVerificationAttempts is the number of wrong codes allowed before the
	// pending verification is dropped.
	MaxVerificationAttempts = 5
)

// VerificationService confirms account emails with a mailed six-digit code.
// Codes are TOTP values over a per-request secret whose period is the code
// lifetime.
type VerificationService struct {
	Store    store.Store
	Notifier Notifier
	Issuer   string
	TTL      time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VerificationService) ttl() time.Duration {
	if s.TTL < time.Minute {
		return DefaultVerificationTTL
	}
	return s.TTL
}

func (s *VerificationService) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(s.ttl().Seconds()),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Request replaces any pending code for u and mails a new one.
func (s *VerificationService) Request(ctx context.Context, u domain.User) error {
	if u.EmailVerified {
		return ErrAlreadyVerified
	}

	issuer := s.Issuer
	if issuer == "" {
		issuer = "brokerage"
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: u.Email})
	if err != nil {
		return fmt.Errorf("generate verification secret: %w", err)
	}

	now := s.now().UTC()
	code, err := totp.GenerateCodeCustom(key.Secret(), now, s.opts())
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	err = s.Store.Verifications().UpsertVerification(ctx, domain.EmailVerification{
		UserID:    u.ID,
		Secret:    key.Secret(),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	if s.Notifier != nil {
		notify(ctx, "verification_code", func() error {
			return s.Notifier.SendVerificationCode(ctx, u.Email, code)
		})
	}
	slogx.FromContext(ctx).Info("verification code issued", slog.String("user_id", u.ID))
	return nil
}

// Confirm checks code and marks u's email verified. Wrong codes count
// towards MaxVerificationAttempts.
func (s *VerificationService) Confirm(ctx context.Context, u domain.User, code string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	now := s.now().UTC()

	v, err := s.Store.Verifications().GetVerification(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidCode
	}
	if err != nil {
		return domain.User{}, err
	}

	if !now.Before(v.ExpiresAt) {
		_ = s.Store.Verifications().DeleteVerification(ctx, u.ID)
		return domain.User{}, ErrInvalidCode
	}
	if v.Attempts >= MaxVerificationAttempts {
		_ = s.Store.Verifications().DeleteVerification(ctx, u.ID)
		return domain.User{}, ErrTooManyAttempts
	}

	ok, err := totp.ValidateCustom(code, v.Secret, now, s.opts())
	if err != nil || !ok {
		attempts, incErr := s.Store.Verifications().IncrementAttempts(ctx, u.ID)
		if incErr != nil {
			l.Error("failed to count verification attempt", slog.Any("error", incErr))
		}
		l.Warn("verification code rejected", slog.String("user_id", u.ID), slog.Int("attempts", attempts))
		return domain.User{}, ErrInvalidCode
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().MarkEmailVerified(ctx, u.ID); err != nil {
			return err
		}
		return tx.Verifications().DeleteVerification(ctx, u.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	l.Info("email verified", slog.String("user_id", u.ID))
	u, err = s.Store.Users().GetUserByID(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}
