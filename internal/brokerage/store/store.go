package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, implemented by the sqlite and
// postgres drivers. Sub-repositories are reached through it so a Tx exposes
// exactly the same surface and nested transactions cannot be started by
// accident.
type Store interface {
	Users() Users
	Referrals() Referrals
	Applications() Applications
	Registrations() Registrations
	Contacts() Contacts
	PasswordResets() PasswordResets
	Verifications() Verifications

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the credential store. Emails are matched lowercased and roles
// always come back normalised (see DecodeRoles).
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByReferralID backs referral id uniqueness checks.
	GetUserByReferralID(ctx context.Context, referralID string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email or referral id is
	// taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile applies the non-nil fields and bumps updated_at.
	UpdateProfile(ctx context.Context, id string, upd domain.UserUpdate) error

	// UpdatePassword stores a new hash and moves the token cutoff.
	UpdatePassword(ctx context.Context, id, hash string, tokensValidAfter time.Time) error

	SetRoles(ctx context.Context, id string, roles []string) error
	MarkEmailVerified(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error

	// ListUsersByRole matches roles case-insensitively, oldest first.
	ListUsersByRole(ctx context.Context, role string) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Referrals interface {
	CreateReferral(ctx context.Context, r domain.Referral) error

	// ListByReferralID returns the referrals made under a referrer's
	// referral id, newest first.
	ListByReferralID(ctx context.Context, referralID string) ([]domain.Referral, error)

	// DeleteOwned deletes a referral only if it was made under referralID.
	DeleteOwned(ctx context.Context, id, referralID string) error

	UpdateStatus(ctx context.Context, id string, status domain.ReferralStatus) error

	// ListWithReferrer joins each referral with its referrer's name and
	// email, newest first. A nil status lists everything.
	ListWithReferrer(ctx context.Context, status *domain.ReferralStatus) ([]domain.Referral, error)
}

type Applications interface {
	CreateApplication(ctx context.Context, a domain.Application) error
	GetApplication(ctx context.Context, id string) (domain.Application, error)

	// ListByUser returns a user's applications newest first. limit <= 0
	// means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Application, error)

	// UpdateFormData replaces an application's form and stamps updated_at.
	UpdateFormData(ctx context.Context, id string, formData map[string]any, at time.Time) error

	DeleteApplication(ctx context.Context, id string) error
}

type Registrations interface {
	CreateRegistration(ctx context.Context, r domain.Registration) error
	ListRegistrations(ctx context.Context) ([]domain.Registration, error)
}

type Contacts interface {
	CreateContact(ctx context.Context, c domain.ContactSubmission) error
	ListContacts(ctx context.Context) ([]domain.ContactSubmission, error)
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error
	GetPasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error)

	// MarkUsed consumes a reset once; a second call returns ErrNotFound.
	MarkUsed(ctx context.Context, id string, at time.Time) error

	// DeleteExpired removes resets that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Verifications interface {
	// UpsertVerification replaces any pending verification for the user.
	UpsertVerification(ctx context.Context, v domain.EmailVerification) error
	GetVerification(ctx context.Context, userID string) (domain.EmailVerification, error)

	// IncrementAttempts returns the attempt count after the increment.
	IncrementAttempts(ctx context.Context, userID string) (int, error)

	DeleteVerification(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
