package brokersdk

import "time"

// ============================================================================
// Auth
// ============================================================================

// TokenResponse is returned by POST /token and POST /token/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// Roles are the caller's roles at issuance time.
	Roles []string `json:"roles"`
}

// RefreshRequest is the JSON body of POST /token/refresh. A form field of the
// same name is also accepted.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest is the optional body of POST /logout. When RefreshToken
// belongs to the caller it is revoked along with the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RegisterRequest is the body of POST /register. Roles may only contain
// "user" and "customer"; empty means ["user"].
type RegisterRequest struct {
	Name          string   `json:"name" validate:"omitempty,max=100"`
	Email         string   `json:"email" validate:"required,email,max=254"`
	ContactNumber string   `json:"contactnumber" validate:"omitempty,phone"`
	Password      string   `json:"password" validate:"required,min=8,max=72"`
	Roles         []string `json:"roles" validate:"omitempty,dive,oneof=user customer"`
}

// BootstrapRequest creates the first admin account.
type BootstrapRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ============================================================================
// Users
// ============================================================================

// UserResponse is the public view of an account. The password hash never
// leaves the server.
type UserResponse struct {
	UserID        string    `json:"userId"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactnumber,omitempty"`
	ReferralID    string    `json:"referralId,omitempty"`
	Roles         []string  `json:"roles"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfileUpdateRequest is the body of PUT /user/me and PUT /admin/users/{id}.
// Nil fields are left untouched.
type ProfileUpdateRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	ContactNumber *string `json:"contactnumber,omitempty" validate:"omitempty,max=32"`
}

// ChangePasswordRequest is the body of PUT /user/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// PasswordResetRequest starts the reset flow for an email.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// VerifyEmailRequest confirms the code mailed by /user/verify-email/request.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// RolesUpdateRequest replaces an account's roles.
type RolesUpdateRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=user admin customer"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Referrals
// ============================================================================

// ReferralRequest is the body of POST /submit-referral.
type ReferralRequest struct {
	ReferralName  string `json:"referralName" validate:"required,notblank,max=100"`
	ReferralEmail string `json:"referralEmail" validate:"required,email"`
	ReferralPhone string `json:"referralPhone,omitempty" validate:"omitempty,phone"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ReferralResponse describes a stored referral. ReferrerName and
// ReferrerEmail are only filled in by the admin listing.
type ReferralResponse struct {
	ID            string    `json:"id"`
	ReferralID    string    `json:"referralId"`
	ReferralName  string    `json:"referralName"`
	ReferralEmail string    `json:"referralEmail"`
	ReferralPhone string    `json:"referralPhone,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ReferrerName  string    `json:"referrerName,omitempty"`
	ReferrerEmail string    `json:"referrerEmail,omitempty"`
}

// StatusUpdateRequest changes a referral's status. Case is normalised.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// ============================================================================
// Mortgage applications
// ============================================================================

// ApplicationRequest is the body of POST /user/mortgage-applications and
// PUT /user/mortgage-application/{id}. FormData is free-form but must carry customerName, customerEmail and
// customerPhone.
type ApplicationRequest struct {
	FormData map[string]any `json:"form_data" validate:"required"`
}

// ApplicationResponse describes a stored application.
type ApplicationResponse struct {
	ApplicationID string         `json:"application_id"`
	UserID        string         `json:"user_id"`
	CustomerID    string         `json:"customerId"`
	Status        string         `json:"status"`
	FormData      map[string]any `json:"form_data"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// ============================================================================
// Public intake
// ============================================================================

// RegistrationRequest is the body of POST /api/register.
type RegistrationRequest struct {
	FullName     string `json:"fullname" validate:"required,notblank,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,phone"`
	MortgageType string `json:"mortgageType" validate:"required,notblank,max=64"`
}

// RegistrationResponse describes a stored interest registration.
type RegistrationResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	MortgageType string    `json:"mortgageType"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	FullName string `json:"fullname" validate:"required,notblank,max=100"`
	Company  string `json:"company,omitempty" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
	Service  string `json:"service" validate:"required,notblank,max=100"`
	Budget   string `json:"budget,omitempty" validate:"omitempty,max=64"`
	Message  string `json:"message" validate:"required,notblank,max=5000"`
}

// ContactResponse describes a stored contact form.
type ContactResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullname"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service"`
	Budget    string    `json:"budget,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
