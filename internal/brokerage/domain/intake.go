package domain

import "time"

// Registration is an anonymous expression of interest in a mortgage product.
type Registration struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	MortgageType string
	CreatedAt    time.Time
}

// ContactSubmission is an anonymous contact form.
type ContactSubmission struct {
	ID        string
	FullName  string
	Company   string
	Email     string
	Phone     string
	Service   string
	Budget    string
	Message   string
	CreatedAt time.Time
}
