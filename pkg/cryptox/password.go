package cryptox

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

var passwordCost atomic.Int64

func init() {
	passwordCost.Store(int64(bcrypt.DefaultCost))
}

// SetPasswordCost overrides the bcrypt work factor for new hashes. Existing
// hashes keep verifying because the cost is encoded in each hash. Values
// outside bcrypt's accepted range are clamped.
func SetPasswordCost(cost int) {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
	passwordCost.Store(int64(cost))
}

// HashPassword returns a salted bcrypt hash of password in modular crypt
// format ("$2a$10$..."). Every call uses a fresh random salt.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), int(passwordCost.Load()))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches encodedHash. A malformed
// or empty hash is a mismatch, never an error.
func VerifyPassword(password, encodedHash string) bool {
	if encodedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// NeedsRehash reports whether encodedHash was produced with a cost lower than
// the one currently configured.
func NeedsRehash(encodedHash string) bool {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return true
	}
	return int64(cost) < passwordCost.Load()
}
