package http

import (
	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
)

func toTokenResponse(p domain.TokenPair) brokersdk.TokenResponse {
	return brokersdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
		Roles:        p.Roles,
	}
}

func toUserResponse(u domain.User) brokersdk.UserResponse {
	return brokersdk.UserResponse{
		UserID:        u.ID,
		Name:          u.Name,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		ReferralID:    u.ReferralID,
		Roles:         u.Roles,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toUserResponses(users []domain.User) []brokersdk.UserResponse {
	out := make([]brokersdk.UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toReferralResponses(refs []domain.Referral) []brokersdk.ReferralResponse {
	out := make([]brokersdk.ReferralResponse, len(refs))
	for i, ref := range refs {
		out[i] = toReferralResponse(ref)
	}
	return out
}

func toReferralResponse(ref domain.Referral) brokersdk.ReferralResponse {
	return brokersdk.ReferralResponse{
		ID:            ref.ID,
		ReferralID:    ref.ReferralID,
		ReferralName:  ref.ReferralName,
		ReferralEmail: ref.ReferralEmail,
		ReferralPhone: ref.ReferralPhone,
		Notes:         ref.Notes,
		Status:        string(ref.Status),
		CreatedAt:     ref.CreatedAt,
		ReferrerName:  ref.ReferrerName,
		ReferrerEmail: ref.ReferrerEmail,
	}
}

func toApplicationResponse(app domain.Application) brokersdk.ApplicationResponse {
	return brokersdk.ApplicationResponse{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		CustomerID:    app.CustomerID,
		Status:        app.Status,
		FormData:      app.FormData,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}
}

func toApplicationResponses(apps []domain.Application) []brokersdk.ApplicationResponse {
	out := make([]brokersdk.ApplicationResponse, len(apps))
	for i, app := range apps {
		out[i] = toApplicationResponse(app)
	}
	return out
}

func toRegistrationResponse(r domain.Registration) brokersdk.RegistrationResponse {
	return brokersdk.RegistrationResponse{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		MortgageType: r.MortgageType,
		CreatedAt:    r.CreatedAt,
	}
}

func toContactResponse(c domain.ContactSubmission) brokersdk.ContactResponse {
	return brokersdk.ContactResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		Service:   c.Service,
		Budget:    c.Budget,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}
