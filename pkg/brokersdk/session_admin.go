package brokersdk

import (
	"context"
	"net/http"
	"net/url"
)

// Admin operations. All of them require the "admin" role.

// ListUsersByRole lists accounts holding role.
func (s *Session) ListUsersByRole(ctx context.Context, role string) ([]UserResponse, error) {
	var users []UserResponse
	if err := s.doJSON(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(role), nil, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser edits another account's profile fields.
func (s *Session) UpdateUser(ctx context.Context, userID string, req ProfileUpdateRequest) (*UserResponse, error) {
	var user UserResponse
	if err := s.doJSON(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserRoles replaces an account's roles.
func (s *Session) SetUserRoles(ctx context.Context, userID string, roles []string) (*UserResponse, error) {
	var user UserResponse
	err := s.doJSON(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID)+"/roles",
		RolesUpdateRequest{Roles: roles}, &user, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account. Its outstanding tokens stop resolving.
func (s *Session) DeleteUser(ctx context.Context, userID string) error {
	return s.doJSON(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil, nil, http.StatusNoContent)
}

// ReferralsByReferrer lists referrals made under a referral id.
func (s *Session) ReferralsByReferrer(ctx context.Context, referralID string) ([]ReferralResponse, error) {
	var refs []ReferralResponse
	if err := s.doJSON(ctx, http.MethodGet, "/admin/referrals/"+url.PathEscape(referralID), nil, &refs, http.StatusOK); err != nil {
		return nil, err
	}
	return refs, nil
}

// UpdateReferralStatus sets a referral's status to Pending, Approved or
// Rejected.
func (s *Session) UpdateReferralStatus(ctx context.Context, id, status string) error {
	return s.doJSON(ctx, http.MethodPatch, "/admin/referrals/"+url.PathEscape(id)+"/status",
		StatusUpdateRequest{Status: status}, nil, http.StatusNoContent)
}

// ListReferrals lists every referral with its referrer, optionally filtered
// by status.
func (s *Session) ListReferrals(ctx context.Context, status string) ([]ReferralResponse, error) {
	path := "/admin/referrals"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var refs []ReferralResponse
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &refs, http.StatusOK); err != nil {
		return nil, err
	}
	return refs, nil
}

// CustomerApplications lists the applications filed by a user.
func (s *Session) CustomerApplications(ctx context.Context, userID string) ([]ApplicationResponse, error) {
	var apps []ApplicationResponse
	err := s.doJSON(ctx, http.MethodGet, "/admin/customer-applications/"+url.PathEscape(userID), nil, &apps, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListRegistrations lists interest registrations, newest first.
func (s *Session) ListRegistrations(ctx context.Context) ([]RegistrationResponse, error) {
	var out []RegistrationResponse
	if err := s.doJSON(ctx, http.MethodGet, "/admin/registrations", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// ListContacts lists contact forms, newest first.
func (s *Session) ListContacts(ctx context.Context) ([]ContactResponse, error) {
	var out []ContactResponse
	if err := s.doJSON(ctx, http.MethodGet, "/admin/contacts", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}
