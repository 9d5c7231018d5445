package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("defaults to the user role", func(t *testing.T) {
		u, err := f.accounts.Register(ctx, NewAccount{Name: "Grace Hopper", Email: "Grace@X.com", Password: "secret123"})
		require.NoError(t, err)
		require.Equal(t, "grace@x.com", u.Email)
		require.Equal(t, []string{"user"}, u.Roles)
		require.Regexp(t, regexp.MustCompile(`^GH\d{4}$`), u.ReferralID)
		require.NotEqual(t, "secret123", u.PasswordHash)
	})

	t.Run("customer may self-register", func(t *testing.T) {
		u, err := f.accounts.Register(ctx, NewAccount{Name: "c", Email: "c@x.com", Password: "secret123", Roles: []string{"Customer"}})
		require.NoError(t, err)
		require.Equal(t, []string{"customer"}, u.Roles)
	})

	t.Run("admin may not self-register", func(t *testing.T) {
		_, err := f.accounts.Register(ctx, NewAccount{Email: "evil@x.com", Password: "secret123", Roles: []string{"user", "admin"}})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("email is unique regardless of case", func(t *testing.T) {
		_, err := f.accounts.Register(ctx, NewAccount{Email: "GRACE@x.com", Password: "secret123"})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestReferralInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two words", "ada lovelace", "AL"},
		{"extra spaces", "  mary   ann evans ", "MAE"},
		{"single word", "Plato", "P"},
		{"empty", "", "XX"},
		{"blank", "   ", "XX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ReferralInitials(tt.in))
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")

	name := "  Ada King  "
	got, err := f.accounts.UpdateProfile(ctx, u.ID, domain.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ada King", got.Name)

	got, err = f.accounts.UpdateProfile(ctx, u.ID, domain.UserUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Ada King", got.Name)

	_, err = f.accounts.AdminUpdate(ctx, u.ID, domain.UserUpdate{})
	require.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = f.accounts.UpdateProfile(ctx, "missing", domain.UserUpdate{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")

	got, err := f.accounts.SetRoles(ctx, u.ID, []string{" Admin ", "user", "ADMIN"})
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "user"}, got.Roles)

	_, err = f.accounts.SetRoles(ctx, u.ID, nil)
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.accounts.SetRoles(ctx, u.ID, []string{"superuser"})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.accounts.SetRoles(ctx, "missing", []string{"user"})
	require.ErrorIs(t, err, ErrUserNotFound)

	admins, err := f.accounts.ListByRole(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, admins, 1)

	_, err = f.accounts.ListByRole(ctx, "root")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")

	require.NoError(t, f.accounts.DeleteUser(ctx, u.ID))
	require.ErrorIs(t, f.accounts.DeleteUser(ctx, u.ID), ErrUserNotFound)

	_, err := f.accounts.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("disabled without a token", func(t *testing.T) {
		svc := &BootstrapService{Store: f.store, Accounts: f.accounts}
		_, err := svc.Bootstrap(ctx, "", "Root", "root@x.com", "secret123")
		require.ErrorIs(t, err, ErrBootstrapDisabled)
	})

	svc := &BootstrapService{Store: f.store, Accounts: f.accounts, Token: "let-me-in"}

	t.Run("wrong token", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "guess", "Root", "root@x.com", "secret123")
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})

	t.Run("creates the first admin", func(t *testing.T) {
		u, err := svc.Bootstrap(ctx, "let-me-in", "Root", "root@x.com", "secret123")
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "user"}, u.Roles)

		done, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.True(t, done)
	})

	t.Run("only once", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "let-me-in", "Root", "root2@x.com", "secret123")
		require.ErrorIs(t, err, ErrBootstrapAlready)
	})
}
