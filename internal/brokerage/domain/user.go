package domain

import (
	"slices"
	"strings"
	"time"
)

// Roles understood by route policies.
const (
	RoleUser     = "user"
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// KnownRoles lists every role an account may hold.
var KnownRoles = []string{RoleUser, RoleAdmin, RoleCustomer}

// SelfServiceRoles are the roles /register may grant.
var SelfServiceRoles = []string{RoleUser, RoleCustomer}

// User is an account. Email is stored lowercased and is unique. Roles is
// never empty once the account exists.
type User struct {
	ID            string
	Email         string
	Name          string
	ContactNumber string
	PasswordHash  string
	Roles         []string
	ReferralID    string
	EmailVerified bool

	// TokensValidAfter rejects tokens issued before it. Set on password
	// change and reset; zero means no cutoff.
	TokensValidAfter time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether u holds role, ignoring case.
func (u User) HasRole(role string) bool {
	return slices.ContainsFunc(u.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}

// IsKnownRole reports whether role is one of KnownRoles, ignoring case.
func IsKnownRole(role string) bool {
	return slices.Contains(KnownRoles, strings.ToLower(strings.TrimSpace(role)))
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate carries optional profile edits. Nil fields are untouched.
type UserUpdate struct {
	Name          *string
	ContactNumber *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.ContactNumber == nil
}
