package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newStore(mock), mock
}

var userCols = []string{"id", "email", "name", "contact_number", "password_hash", "roles",
	"referral_id", "email_verified", "tokens_valid_after", "created_at", "updated_at"}

func TestCreateUser(t *testing.T) {
	now := time.Now().UTC()
	u := domain.User{
		ID: "u1", Email: " A@X.com", Name: "A", PasswordHash: "hash",
		Roles: []string{"User"}, ReferralID: "REF1", CreatedAt: now, UpdatedAt: now,
	}

	tests := []struct {
		name    string
		setupDB func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "inserts normalised email and roles",
			setupDB: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO users").
					WithArgs("u1", "a@x.com", "A", "", "hash", `["user"]`,
						pgxmock.AnyArg(), false, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to already exists",
			setupDB: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO users").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
			},
			wantErr: store.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupDB(mock)

			err := s.Users().CreateUser(context.Background(), u)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUserWithoutRoles(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.Users().CreateUser(context.Background(), domain.User{ID: "u1", Email: "a@x.com"})
	require.ErrorIs(t, err, store.ErrNoRoles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cutoff := created.Add(time.Hour)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "A", "0400", "hash", "Admin, user",
				"REF1", true, &cutoff, created, created))

	u, err := s.Users().GetUserByEmail(context.Background(), "A@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, []string{"admin", "user"}, u.Roles)
	assert.Equal(t, "REF1", u.ReferralID)
	assert.True(t, u.EmailVerified)
	assert.True(t, u.TokensValidAfter.Equal(cutoff))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Users().GetUserByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersByRoleFiltersExactRole(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	// ILIKE '%user%' also matches "superuser".
	mock.ExpectQuery("WHERE roles ILIKE").
		WithArgs("%user%").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "A", "", "h", `["user"]`, "", false, (*time.Time)(nil), now, now).
			AddRow("u2", "b@x.com", "B", "", "h", `["superuser"]`, "", false, (*time.Time)(nil), now, now))

	users, err := s.Users().ListUsersByRole(context.Background(), "user")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.True(t, users[0].TokensValidAfter.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileNumbersPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)
	name := "New"
	phone := "0400"

	mock.ExpectExec(`UPDATE users SET updated_at = \$1, name = \$2, contact_number = \$3 WHERE id = \$4`).
		WithArgs(pgxmock.AnyArg(), "New", "0400", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.Users().UpdateProfile(context.Background(), "u1", domain.UserUpdate{Name: &name, ContactNumber: &phone})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordMissingUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("hash", pgxmock.AnyArg(), pgxmock.AnyArg(), "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.Users().UpdatePassword(context.Background(), "gone", "hash", time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	empty, err := s.Users().IsEmpty(context.Background())
	require.NoError(t, err)
	assert.True(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithReferrerStatusFilter(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()
	status := domain.ReferralApproved

	mock.ExpectQuery("LEFT JOIN users u").
		WithArgs("Approved").
		WillReturnRows(pgxmock.NewRows([]string{"id", "referral_id", "referral_name", "referral_email",
			"referral_phone", "notes", "status", "created_at", "name", "email"}).
			AddRow("r1", "REF1", "Bob", "bob@x.com", "", "", "Approved", now, "Alice", "alice@x.com"))

	refs, err := s.Referrals().ListWithReferrer(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.ReferralApproved, refs[0].Status)
	assert.Equal(t, "Alice", refs[0].ReferrerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedReferralOfSomeoneElse(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM referrals").
		WithArgs("r1", "REF2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.Referrals().DeleteOwned(context.Background(), "r1", "REF2")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var applicationCols = []string{"id", "user_id", "customer_id", "status", "form_data", "created_at", "updated_at"}

func TestGetApplicationDecodesFormData(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM mortgage_applications WHERE id").
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows(applicationCols).
			AddRow("a1", "u1", "CUST-1", "submitted", []byte(`{"customerName":"Carol","loan":450000}`), now, (*time.Time)(nil)))

	a, err := s.Applications().GetApplication(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Carol", a.FormData["customerName"])
	assert.EqualValues(t, 450000, a.FormData["loan"])
	assert.Nil(t, a.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFormData(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	form := map[string]any{"customerName": "Carol", "loan": 500000}

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"replaces form and stamps updated_at", 1, nil},
		{"missing application", 0, store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE mortgage_applications SET form_data = \$1, updated_at = \$2 WHERE id = \$3`).
				WithArgs(`{"customerName":"Carol","loan":500000}`, at, "a1").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := s.Applications().UpdateFormData(context.Background(), "a1", form, at)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListByUserLimit(t *testing.T) {
	s, mock := newMockStore(t)
	cols := applicationCols

	mock.ExpectQuery(`WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT`).
		WithArgs("u1", 5).
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(`WHERE user_id = \$1 ORDER BY created_at DESC, id DESC$`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(cols))

	got, err := s.Applications().ListByUser(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Applications().ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkUsedTwice(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec("UPDATE password_resets SET used_at").
		WithArgs(pgxmock.AnyArg(), "pr1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE password_resets SET used_at").
		WithArgs(pgxmock.AnyArg(), "pr1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, s.PasswordResets().MarkUsed(context.Background(), "pr1", now))
	require.ErrorIs(t, s.PasswordResets().MarkUsed(context.Background(), "pr1", now), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredResets(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM password_resets").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.PasswordResets().DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementAttempts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE email_verifications SET attempts").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"attempts"}).AddRow(3))
	mock.ExpectQuery("UPDATE email_verifications SET attempts").
		WithArgs("u2").
		WillReturnError(pgx.ErrNoRows)

	n, err := s.Verifications().IncrementAttempts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.Verifications().IncrementAttempts(context.Background(), "u2")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM users").
			WithArgs("u1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Users().DeleteUser(context.Background(), "u1")
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		s, mock := newMockStore(t)
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			_, err := tx.Tx(context.Background())
			return err
		})
		require.ErrorIs(t, err, errNestedTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyMigrationsNeedsPool(t *testing.T) {
	s, _ := newMockStore(t)
	require.ErrorIs(t, s.ApplyMigrations(), errNoPool)
}
