package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// NewReferral is a person a user refers to the brokerage.
type NewReferral struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type ReferralService struct {
	Store    store.Store
	Notifier Notifier
}

// Submit records a referral under the referrer's referral id and tells the
// referred person about it.
func (s *ReferralService) Submit(ctx context.Context, referrer domain.User, in NewReferral) (domain.Referral, error) {
	if referrer.ReferralID == "" {
		return domain.Referral{}, ErrNoReferralID
	}

	ref := domain.Referral{
		ID:            idx.NewUUID(),
		ReferralID:    referrer.ReferralID,
		ReferralName:  strings.TrimSpace(in.Name),
		ReferralEmail: domain.NormalizeEmail(in.Email),
		ReferralPhone: strings.TrimSpace(in.Phone),
		Notes:         strings.TrimSpace(in.Notes),
		Status:        domain.ReferralPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Store.Referrals().CreateReferral(ctx, ref); err != nil {
		return domain.Referral{}, err
	}

	slogx.FromContext(ctx).Info("referral submitted",
		slog.String("referral_id", ref.ID),
		slog.String("referrer", referrer.ReferralID),
	)

	if s.Notifier != nil {
		notify(ctx, "referral", func() error {
			return s.Notifier.SendReferral(ctx, ref.ReferralEmail, referrer.Email, referrer.ReferralID)
		})
	}
	return ref, nil
}

// Mine lists the referrals made by u, newest first.
func (s *ReferralService) Mine(ctx context.Context, u domain.User) ([]domain.Referral, error) {
	if u.ReferralID == "" {
		return []domain.Referral{}, nil
	}
	return s.Store.Referrals().ListByReferralID(ctx, u.ReferralID)
}

// DeleteMine deletes a referral made by u. Someone else's referral looks
// the same as a missing one.
func (s *ReferralService) DeleteMine(ctx context.Context, u domain.User, id string) error {
	if u.ReferralID == "" {
		return ErrReferralNotFound
	}
	err := s.Store.Referrals().DeleteOwned(ctx, id, u.ReferralID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReferralNotFound
	}
	return err
}

func (s *ReferralService) ByReferrer(ctx context.Context, referralID string) ([]domain.Referral, error) {
	return s.Store.Referrals().ListByReferralID(ctx, strings.TrimSpace(referralID))
}

// UpdateStatus sets a referral's status. status is matched case-insensitively.
func (s *ReferralService) UpdateStatus(ctx context.Context, id, status string) (domain.ReferralStatus, error) {
	st, ok := domain.ParseReferralStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}

	err := s.Store.Referrals().UpdateStatus(ctx, id, st)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrReferralNotFound
	}
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("referral status updated", slog.String("referral_id", id), slog.String("status", string(st)))
	return st, nil
}

// List returns referrals with their referrer's name and email. An empty
// status lists every referral.
func (s *ReferralService) List(ctx context.Context, status string) ([]domain.Referral, error) {
	if strings.TrimSpace(status) == "" {
		return s.Store.Referrals().ListWithReferrer(ctx, nil)
	}

	st, ok := domain.ParseReferralStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return s.Store.Referrals().ListWithReferrer(ctx, &st)
}
