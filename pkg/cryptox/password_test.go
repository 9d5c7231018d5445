package cryptox

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	// Keep the suite fast, the cost is embedded in every hash anyway.
	SetPasswordCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"max length password", strings.Repeat("a", 72)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$"), "hash should be modular crypt bcrypt")
			if tt.password != "" {
				require.NotContains(t, hash, tt.password+"$")
			}

			require.True(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.True(t, VerifyPassword("samepassword", hash1))
	require.True(t, VerifyPassword("samepassword", hash2))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "secret123", hash, true},
		{"wrong password", "secret124", hash, false},
		{"case matters", "SECRET123", hash, false},
		{"empty hash", "secret123", "", false},
		{"garbage hash", "secret123", "not-a-hash", false},
		{"truncated hash", "secret123", hash[:20], false},
		{"argon2 hash is not accepted", "secret123", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, VerifyPassword(tt.password, tt.hash))
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	require.False(t, NeedsRehash(hash))

	SetPasswordCost(bcrypt.MinCost + 1)
	t.Cleanup(func() { SetPasswordCost(bcrypt.MinCost) })
	require.True(t, NeedsRehash(hash))
	require.True(t, NeedsRehash("garbage"))
}

func TestSetPasswordCost_Clamps(t *testing.T) {
	t.Cleanup(func() { SetPasswordCost(bcrypt.MinCost) })

	SetPasswordCost(1)
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}
