package brokersdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the caller's account.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var user UserResponse
	if err := s.doJSON(ctx, http.MethodGet, "/user/me", nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe edits the caller's name and contact number.
func (s *Session) UpdateMe(ctx context.Context, req ProfileUpdateRequest) (*UserResponse, error) {
	var user UserResponse
	if err := s.doJSON(ctx, http.MethodPut, "/user/me", req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the caller's password. Access tokens issued before
// the change stop working.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	return s.doJSON(ctx, http.MethodPut, "/user/password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil, http.StatusNoContent)
}

// Logout revokes the current access token and the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodPost, "/logout",
		LogoutRequest{RefreshToken: s.RefreshToken()}, nil, http.StatusNoContent)
}

// RequestEmailVerification asks for a verification code to be mailed.
func (s *Session) RequestEmailVerification(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodPost, "/user/verify-email/request", nil, nil, http.StatusNoContent)
}

// ConfirmEmail submits the mailed code.
func (s *Session) ConfirmEmail(ctx context.Context, code string) (*UserResponse, error) {
	var user UserResponse
	err := s.doJSON(ctx, http.MethodPost, "/user/verify-email/confirm",
		VerifyEmailRequest{Code: code}, &user, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SubmitReferral refers someone under the caller's referral id.
func (s *Session) SubmitReferral(ctx context.Context, req ReferralRequest) (*ReferralResponse, error) {
	var ref ReferralResponse
	if err := s.doJSON(ctx, http.MethodPost, "/submit-referral", req, &ref, http.StatusCreated); err != nil {
		return nil, err
	}
	return &ref, nil
}

// MyReferrals lists referrals made by the caller.
func (s *Session) MyReferrals(ctx context.Context) ([]ReferralResponse, error) {
	var refs []ReferralResponse
	if err := s.doJSON(ctx, http.MethodGet, "/my-referrals", nil, &refs, http.StatusOK); err != nil {
		return nil, err
	}
	return refs, nil
}

// DeleteReferral removes one of the caller's referrals.
func (s *Session) DeleteReferral(ctx context.Context, id string) error {
	return s.doJSON(ctx, http.MethodDelete, "/delete-referral/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// SubmitApplication files a mortgage application.
func (s *Session) SubmitApplication(ctx context.Context, formData map[string]any) (*ApplicationResponse, error) {
	var app ApplicationResponse
	err := s.doJSON(ctx, http.MethodPost, "/user/mortgage-applications",
		ApplicationRequest{FormData: formData}, &app, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// MyApplications lists the caller's applications, newest first.
func (s *Session) MyApplications(ctx context.Context) ([]ApplicationResponse, error) {
	var apps []ApplicationResponse
	if err := s.doJSON(ctx, http.MethodGet, "/user/mortgage-applications", nil, &apps, http.StatusOK); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplication replaces the form of an application the caller owns.
// Admins may update any application.
func (s *Session) UpdateApplication(ctx context.Context, id string, formData map[string]any) (*ApplicationResponse, error) {
	var app ApplicationResponse
	err := s.doJSON(ctx, http.MethodPut, "/user/mortgage-application/"+url.PathEscape(id),
		ApplicationRequest{FormData: formData}, &app, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApplication removes an application the caller owns. Admins may
// delete any application.
func (s *Session) DeleteApplication(ctx context.Context, id string) error {
	return s.doJSON(ctx, http.MethodDelete, "/user/mortgage-application/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
