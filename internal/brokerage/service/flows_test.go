package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
	"github.com/stretchr/testify/require"
)

func TestReferrals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@x.com", "secret123")
	bob := f.register(t, "bob@x.com", "secret123")
	svc := &ReferralService{Store: f.store, Notifier: f.notifier}

	ref, err := svc.Submit(ctx, alice, NewReferral{Name: " Carol ", Email: "Carol@X.com", Phone: "0400000000"})
	require.NoError(t, err)
	require.Equal(t, alice.ReferralID, ref.ReferralID)
	require.Equal(t, domain.ReferralPending, ref.Status)
	require.Equal(t, "Carol", ref.ReferralName)
	require.Equal(t, []string{"carol@x.com"}, f.notifier.referrals)

	_, err = svc.Submit(ctx, domain.User{Email: "nobody@x.com"}, NewReferral{Name: "x"})
	require.ErrorIs(t, err, ErrNoReferralID)

	mine, err := svc.Mine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := svc.Mine(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, theirs)

	require.ErrorIs(t, svc.DeleteMine(ctx, bob, ref.ID), ErrReferralNotFound)

	_, err = svc.UpdateStatus(ctx, ref.ID, "sideways")
	require.ErrorIs(t, err, ErrInvalidStatus)

	st, err := svc.UpdateStatus(ctx, ref.ID, "approved")
	require.NoError(t, err)
	require.Equal(t, domain.ReferralApproved, st)

	_, err = svc.UpdateStatus(ctx, "missing", "approved")
	require.ErrorIs(t, err, ErrReferralNotFound)

	approved, err := svc.List(ctx, "APPROVED")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.Equal(t, "alice@x.com", approved[0].ReferrerEmail)

	pending, err := svc.List(ctx, "pending")
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = svc.List(ctx, "unknown")
	require.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, svc.DeleteMine(ctx, alice, ref.ID))
	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@x.com", "secret123")
	other := f.register(t, "other@x.com", "secret123")
	admin := domain.User{ID: "admin-id", Roles: []string{"admin"}}
	svc := &ApplicationService{Store: f.store}

	t.Run("required fields", func(t *testing.T) {
		_, err := svc.Submit(ctx, owner, map[string]any{"customerName": "Owner", "customerEmail": "  "})

		var verr *validx.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, map[string]string{
			"form_data.customerEmail": "required",
			"form_data.customerPhone": "required",
		}, verr.Fields)
	})

	form := map[string]any{
		"customerName":  "Owner",
		"customerEmail": "owner@x.com",
		"customerPhone": "0400000000",
		"loanAmount":    float64(650000),
	}
	first, err := svc.Submit(ctx, owner, form)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationSubmitted, first.Status)
	require.NotEmpty(t, first.CustomerID)

	second, err := svc.Submit(ctx, owner, form)
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, float64(650000), mine[0].FormData["loanAmount"])

	_, err = svc.ForUser(ctx, other.ID)
	require.ErrorIs(t, err, ErrNoApplications)

	t.Run("update", func(t *testing.T) {
		edited := map[string]any{
			"customerName":  "Owner",
			"customerEmail": "owner@x.com",
			"customerPhone": "0411111111",
		}
		svc.Now = func() time.Time { return first.CreatedAt.Add(time.Hour) }
		t.Cleanup(func() { svc.Now = nil })

		_, err := svc.Update(ctx, owner, first.ID, map[string]any{"customerName": "Owner"})
		var verr *validx.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "form_data.customerPhone")

		_, err = svc.Update(ctx, other, first.ID, edited)
		require.ErrorIs(t, err, ErrApplicationNotFound)
		_, err = svc.Update(ctx, owner, "missing", edited)
		require.ErrorIs(t, err, ErrApplicationNotFound)

		got, err := svc.Update(ctx, owner, first.ID, edited)
		require.NoError(t, err)
		require.Equal(t, first.CustomerID, got.CustomerID)
		require.Equal(t, domain.ApplicationSubmitted, got.Status)
		require.NotNil(t, got.UpdatedAt)
		require.True(t, first.CreatedAt.Add(time.Hour).Equal(*got.UpdatedAt))

		_, err = svc.Update(ctx, admin, first.ID, edited)
		require.NoError(t, err)

		stored, err := f.store.Applications().GetApplication(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, "0411111111", stored.FormData["customerPhone"])
		require.Nil(t, stored.FormData["loanAmount"])
		require.WithinDuration(t, first.CreatedAt, stored.CreatedAt, time.Millisecond)
	})

	require.ErrorIs(t, svc.Delete(ctx, other, first.ID), ErrApplicationNotFound)
	require.NoError(t, svc.Delete(ctx, owner, first.ID))
	require.NoError(t, svc.Delete(ctx, admin, second.ID))
	require.ErrorIs(t, svc.Delete(ctx, owner, second.ID), ErrApplicationNotFound)
}

func TestIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := &IntakeService{Store: f.store}

	r, err := svc.Register(ctx, domain.Registration{FullName: " Dee ", Email: "DEE@x.com", MortgageType: "refinance"})
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	require.Equal(t, "dee@x.com", r.Email)

	_, err = svc.Contact(ctx, domain.ContactSubmission{FullName: "Eve", Email: "eve@x.com", Message: " hello "})
	require.NoError(t, err)

	regs, err := svc.Registrations(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)

	contacts, err := svc.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "hello", contacts[0].Message)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "secret123")
	before := f.login(t, "a@x.com", "secret123")

	f.clock.Advance(2 * time.Second)
	svc := &PasswordResetService{
		Store:    f.store,
		Notifier: f.notifier,
		BaseURL:  "https://brokerage.example/",
		Now:      f.clock.Now,
	}

	require.ErrorIs(t, svc.Request(ctx, "nobody@x.com"), ErrUserNotFound)
	require.NoError(t, svc.Request(ctx, "A@x.com"))
	require.Len(t, f.notifier.links, 1)

	link, err := url.Parse(f.notifier.links[0])
	require.NoError(t, err)
	require.Equal(t, "brokerage.example", link.Host)
	require.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	require.ErrorIs(t, svc.Reset(ctx, "not-a-token", "newsecret1"), ErrInvalidResetToken)
	require.NoError(t, svc.Reset(ctx, token, "newsecret1"))
	require.ErrorIs(t, svc.Reset(ctx, token, "again12345"), ErrInvalidResetToken, "tokens are single use")

	_, err = f.authz.Authorize(ctx, before.AccessToken)
	require.ErrorIs(t, err, ErrRevokedToken)

	f.login(t, "a@x.com", "newsecret1")
}

func TestPasswordResetExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "secret123")
	svc := &PasswordResetService{Store: f.store, Notifier: f.notifier, TTL: time.Minute, Now: f.clock.Now}

	require.NoError(t, svc.Request(ctx, "a@x.com"))
	link, err := url.Parse(f.notifier.links[0])
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	require.ErrorIs(t, svc.Reset(ctx, link.Query().Get("token"), "newsecret1"), ErrInvalidResetToken)
}

func TestVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")
	svc := &VerificationService{Store: f.store, Notifier: f.notifier, Now: f.clock.Now}

	_, err := svc.Confirm(ctx, u, "123456")
	require.ErrorIs(t, err, ErrInvalidCode, "nothing requested yet")

	require.NoError(t, svc.Request(ctx, u))
	require.Len(t, f.notifier.codes, 1)
	code := f.notifier.codes[0]
	require.Len(t, code, 6)

	_, err = svc.Confirm(ctx, u, wrongCode(code))
	require.ErrorIs(t, err, ErrInvalidCode)

	got, err := svc.Confirm(ctx, u, code)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)

	require.ErrorIs(t, svc.Request(ctx, got), ErrAlreadyVerified)
}

func TestVerificationAttemptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")
	svc := &VerificationService{Store: f.store, Notifier: f.notifier, Now: f.clock.Now}

	require.NoError(t, svc.Request(ctx, u))
	code := f.notifier.codes[0]

	for range MaxVerificationAttempts {
		_, err := svc.Confirm(ctx, u, wrongCode(code))
		require.ErrorIs(t, err, ErrInvalidCode)
	}

	_, err := svc.Confirm(ctx, u, code)
	require.ErrorIs(t, err, ErrTooManyAttempts)

	// The pending code is gone; a new request starts over.
	_, err = svc.Confirm(ctx, u, code)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerificationExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")
	svc := &VerificationService{Store: f.store, Notifier: f.notifier, Now: f.clock.Now}

	require.NoError(t, svc.Request(ctx, u))
	f.clock.Advance(DefaultVerificationTTL)

	_, err := svc.Confirm(ctx, u, f.notifier.codes[0])
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestHousekeepingCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret123")

	past := time.Now().Add(-2 * time.Hour)
	resets := &PasswordResetService{Store: f.store, Notifier: f.notifier, Now: func() time.Time { return past }}
	require.NoError(t, resets.Request(ctx, "a@x.com"))
	verify := &VerificationService{Store: f.store, Notifier: f.notifier, Now: func() time.Time { return past }}
	require.NoError(t, verify.Request(ctx, u))

	require.NoError(t, f.deny.Revoke(ctx, "live", time.Now().Add(time.Hour)))

	hk := NewHousekeepingService(f.store, f.deny, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Cleanup(ctx)

	n, err := f.store.PasswordResets().DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = f.store.Verifications().DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	require.Equal(t, 1, f.deny.Len())
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)
	hk := NewHousekeepingService(f.store, nil, slogx.Discard(), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}

// wrongCode returns a six-digit code that differs from code in every digit.
func wrongCode(code string) string {
	b := []byte(code)
	for i := range b {
		b[i] = '0' + (b[i]-'0'+5)%10
	}
	return string(b)
}
