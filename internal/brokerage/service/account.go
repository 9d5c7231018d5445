package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/cryptox"
	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// maxReferralIDAttempts bounds the search for a free referral id. Four
// random digits give 10000 ids per set of initials.
const maxReferralIDAttempts = 20

// NewAccount is a self-service registration.
type NewAccount struct {
	Name          string
	Email         string
	ContactNumber string
	Password      string
	Roles         []string
}

type AccountService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates an account. Self-registration may only ask for the user
// and customer roles; no roles means ["user"].
func (s *AccountService) Register(ctx context.Context, in NewAccount) (domain.User, error) {
	roles := store.NormalizeRoles(in.Roles)
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	for _, r := range roles {
		if r != domain.RoleUser && r != domain.RoleCustomer {
			return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, r)
		}
	}

	return s.create(ctx, in.Name, in.Email, in.ContactNumber, in.Password, roles)
}

func (s *AccountService) create(ctx context.Context, name, email, contact, password string, roles []string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	referralID, err := s.newReferralID(ctx, name)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now().UTC()
	u := domain.User{
		ID:            idx.New().String(),
		Email:         email,
		Name:          name,
		ContactNumber: strings.TrimSpace(contact),
		PasswordHash:  hash,
		Roles:         roles,
		ReferralID:    referralID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	l.Info("account registered",
		slog.String("user_id", u.ID),
		slog.String("email", u.Email),
		slog.Any("roles", u.Roles),
	)
	return u, nil
}

// newReferralID returns an unused id made of the name's initials (or "XX")
// followed by four random digits.
func (s *AccountService) newReferralID(ctx context.Context, name string) (string, error) {
	prefix := ReferralInitials(name)
	for range maxReferralIDAttempts {
		digits, err := cryptox.RandomDigits(4)
		if err != nil {
			return "", err
		}
		candidate := prefix + digits

		_, err = s.Store.Users().GetUserByReferralID(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free referral id for prefix %q", prefix)
}

// ReferralInitials uppercases the first letter of each word of name.
func ReferralInitials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "XX"
	}
	return b.String()
}

func (s *AccountService) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile trims and applies the given fields. An empty update returns
// the account unchanged.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	upd = trimUpdate(upd)
	if upd.Empty() {
		return s.GetUser(ctx, id)
	}

	if err := s.Store.Users().UpdateProfile(ctx, id, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

// AdminUpdate is UpdateProfile for admins, who must change something.
func (s *AccountService) AdminUpdate(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	if upd.Empty() {
		return domain.User{}, ErrEmptyUpdate
	}
	return s.UpdateProfile(ctx, id, upd)
}

func trimUpdate(upd domain.UserUpdate) domain.UserUpdate {
	if upd.Name != nil {
		v := strings.TrimSpace(*upd.Name)
		upd.Name = &v
	}
	if upd.ContactNumber != nil {
		v := strings.TrimSpace(*upd.ContactNumber)
		upd.ContactNumber = &v
	}
	return upd
}

// ChangePassword replaces the password after checking the current one. Every
// token issued before the change stops working.
func (s *AccountService) ChangePassword(ctx context.Context, u domain.User, current, next string) error {
	if !cryptox.VerifyPassword(current, u.PasswordHash) {
		slogx.FromContext(ctx).Warn("password change with wrong current password", slog.String("user_id", u.ID))
		return ErrWrongPassword
	}
	return s.setPassword(ctx, u.ID, next)
}

func (s *AccountService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	err = s.Store.Users().UpdatePassword(ctx, userID, hash, passwordCutoff(s.now()))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}

// ListByRole lists accounts holding role, oldest first.
func (s *AccountService) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	if !domain.IsKnownRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return s.Store.Users().ListUsersByRole(ctx, role)
}

// SetRoles replaces an account's roles. Changes apply to new and refreshed
// tokens; access tokens already issued keep their snapshot, but every request
// re-reads the account so route checks see the new roles at once.
func (s *AccountService) SetRoles(ctx context.Context, id string, roles []string) (domain.User, error) {
	roles = store.NormalizeRoles(roles)
	if len(roles) == 0 {
		return domain.User{}, fmt.Errorf("%w: at least one role is required", ErrInvalidRole)
	}
	for _, r := range roles {
		if !domain.IsKnownRole(r) {
			return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, r)
		}
	}

	if err := s.Store.Users().SetRoles(ctx, id, roles); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("roles updated", slog.String("user_id", id), slog.Any("roles", roles))
	return s.GetUser(ctx, id)
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("user_id", id))
	return nil
}
