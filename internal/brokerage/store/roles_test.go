package store_test

import (
	"testing"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoles(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "json array", raw: `["user","admin"]`, want: []string{"user", "admin"}},
		{name: "legacy scalar", raw: `admin`, want: []string{"admin"}},
		{name: "legacy quoted scalar", raw: `"Admin"`, want: []string{"admin"}},
		{name: "comma list", raw: `user, customer`, want: []string{"user", "customer"}},
		{name: "mixed case and dupes", raw: `["User"," user ","ADMIN"]`, want: []string{"user", "admin"}},
		{name: "broken json array", raw: `[user,admin`, want: []string{"user", "admin"}},
		{name: "empty", raw: ``, want: []string{}},
		{name: "empty array", raw: `[]`, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, store.DecodeRoles(tc.raw))
		})
	}
}

func TestEncodeRoles(t *testing.T) {
	raw, err := store.EncodeRoles([]string{" User", "admin", "user"})
	require.NoError(t, err)
	require.Equal(t, `["user","admin"]`, raw)
	require.Equal(t, []string{"user", "admin"}, store.DecodeRoles(raw))

	_, err = store.EncodeRoles([]string{" ", ""})
	require.ErrorIs(t, err, store.ErrNoRoles)
}
