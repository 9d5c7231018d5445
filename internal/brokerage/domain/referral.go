package domain

import (
	"strings"
	"time"
)

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "Pending"
	ReferralApproved ReferralStatus = "Approved"
	ReferralRejected ReferralStatus = "Rejected"
)

// ParseReferralStatus accepts any casing ("pending", "APPROVED") and returns
// the canonical status.
func ParseReferralStatus(s string) (ReferralStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return ReferralPending, true
	case "approved":
		return ReferralApproved, true
	case "rejected":
		return ReferralRejected, true
	default:
		return "", false
	}
}

// Referral is a person referred by a user. ReferralID is the referrer's
// referral id, not a key of this record.
type Referral struct {
	ID            string
	ReferralID    string
	ReferralName  string
	ReferralEmail string
	ReferralPhone string
	Notes         string
	Status        ReferralStatus
	CreatedAt     time.Time

	// Populated by admin listings only.
	ReferrerName  string
	ReferrerEmail string
}
