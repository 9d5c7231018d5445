package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/cryptox"
	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

const DefaultResetTTL = 60 * time.Minute

// PasswordResetService runs the emailed reset-link flow. Only a SHA-256
// fingerprint of each link token is stored.
type PasswordResetService struct {
	Store    store.Store
	Notifier Notifier

	// BaseURL is the public site the link points at, e.g.
	// "https://aaifinancials.com".
	BaseURL string
	TTL     time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *PasswordResetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultResetTTL
	}
	return s.TTL
}

// Request mails a reset link to email. Unknown emails return
// ErrUserNotFound.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("password reset requested for unknown email", slog.String("email", domain.NormalizeEmail(email)))
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	reset := domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, reset); err != nil {
		return fmt.Errorf("store reset: %w", err)
	}

	link := strings.TrimRight(s.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	if s.Notifier != nil {
		notify(ctx, "password_reset", func() error {
			return s.Notifier.SendPasswordReset(ctx, u.Email, link)
		})
	}

	l.Info("password reset link issued", slog.String("user_id", u.ID))
	return nil
}

// Reset consumes token and sets a new password. A token works once and only
// before it expires. Every session of the account ends.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	now := s.now().UTC()

	reset, err := s.Store.PasswordResets().GetPasswordResetByHash(ctx, cryptox.FingerprintToken(strings.TrimSpace(token)))
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if reset.UsedAt != nil || !now.Before(reset.ExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().MarkUsed(ctx, reset.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if err := tx.Users().UpdatePassword(ctx, reset.UserID, hash, passwordCutoff(now)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset completed", slog.String("user_id", reset.UserID))
	return nil
}
