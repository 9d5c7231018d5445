package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/stretchr/testify/require"
)

func TestParseReferralStatus(t *testing.T) {
	cases := map[string]domain.ReferralStatus{
		"pending":    domain.ReferralPending,
		" APPROVED ": domain.ReferralApproved,
		"Rejected":   domain.ReferralRejected,
	}
	for in, want := range cases {
		got, ok := domain.ParseReferralStatus(in)
		require.True(t, ok, in)
		require.Equal(t, want, got)
	}

	for _, bad := range []string{"", "done", "pend"} {
		_, ok := domain.ParseReferralStatus(bad)
		require.False(t, ok, bad)
	}
}

func TestUserHasRole(t *testing.T) {
	u := domain.User{Roles: []string{"user", "Admin"}}
	require.True(t, u.HasRole("admin"))
	require.True(t, u.HasRole("USER"))
	require.False(t, u.HasRole("customer"))
}

func TestIsKnownRole(t *testing.T) {
	require.True(t, domain.IsKnownRole(" Customer"))
	require.False(t, domain.IsKnownRole("root"))
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "a@x.com", domain.NormalizeEmail("  A@X.com "))
}
