package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// Notifier delivers messages to people outside the API. Delivery failures
// are reported but never undo the operation that triggered them.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, link string) error
	SendVerificationCode(ctx context.Context, email, code string) error
	SendReferral(ctx context.Context, to, referrerEmail, referralID string) error
}

// LogNotifier writes every message to the request logger instead of sending
// it. Reset links and codes are secrets, so only their presence is logged
// unless Reveal is set (local development).
type LogNotifier struct {
	Reveal bool
}

func (n LogNotifier) SendPasswordReset(ctx context.Context, email, link string) error {
	attrs := []any{slog.String("to", email)}
	if n.Reveal {
		attrs = append(attrs, slog.String("link", link))
	}
	slogx.FromContext(ctx).Info("notify: password reset", attrs...)
	return nil
}

func (n LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	attrs := []any{slog.String("to", email)}
	if n.Reveal {
		attrs = append(attrs, slog.String("code", code))
	}
	slogx.FromContext(ctx).Info("notify: verification code", attrs...)
	return nil
}

func (n LogNotifier) SendReferral(ctx context.Context, to, referrerEmail, referralID string) error {
	slogx.FromContext(ctx).Info("notify: referral",
		slog.String("to", to),
		slog.String("referrer", referrerEmail),
		slog.String("referral_id", referralID),
	)
	return nil
}

// notify runs send and logs a failure instead of returning it.
func notify(ctx context.Context, what string, send func() error) {
	if err := send(); err != nil {
		slogx.FromContext(ctx).Error("notification failed", slog.String("kind", what), slog.Any("error", err))
	}
}
