package brokersdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// PasswordGrant exchanges an email and password for a token pair.
func (c *SDKClient) PasswordGrant(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/token",
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// RefreshGrant trades a refresh token for a new pair. The previous access
// token stays valid until it expires.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var tok TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/token/refresh",
		RefreshRequest{RefreshToken: refreshToken}, &tok, http.StatusOK, nil)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login authenticates and returns a Session that refreshes itself.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// Register creates a self-service account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var user UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/register", req, &user, http.StatusCreated, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// Bootstrap creates the first admin. token must match the server's
// BOOTSTRAP_TOKEN.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*UserResponse, error) {
	var user UserResponse
	err := c.doJSON(ctx, http.MethodPost, "/bootstrap", req, &user, http.StatusCreated,
		map[string]string{"X-Bootstrap-Token": token})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset asks the server to mail a reset link.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/user/password-reset-request",
		PasswordResetRequest{Email: email}, nil, http.StatusOK, nil)
}

// ResetPassword completes a reset with the token from the mailed link.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/user/reset-password",
		ResetPasswordRequest{Token: token, NewPassword: newPassword}, nil, http.StatusOK, nil)
}
