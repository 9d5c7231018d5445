package domain

import "time"

// ApplicationSubmitted is the status of a newly filed application.
const ApplicationSubmitted = "submitted"

// Form fields every application must carry.
var RequiredApplicationFields = []string{"customerName", "customerEmail", "customerPhone"}

// Application is a mortgage application. FormData is the client's form as
// last submitted; UpdatedAt is nil until the form is first replaced.
type Application struct {
	ID         string
	UserID     string
	CustomerID string
	Status     string
	FormData   map[string]any
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
