package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// AccountHandler serves registration and the caller's own account.
type AccountHandler struct {
	Accounts  *service.AccountService
	Validator *validx.Validator
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Self-service registration. Roles may only contain "user" and "customer"; none means ["user"].
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	brokersdk.UserResponse		"Created account"
//	@Failure		400		{object}	brokersdk.APIError			"Invalid body or role"
//	@Failure		409		{object}	brokersdk.APIError			"Email already registered"
//	@Failure		422		{object}	brokersdk.APIError			"Validation failed"
//	@Router			/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.RegisterRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	u, err := h.Accounts.Register(r.Context(), service.NewAccount{
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
		Roles:         req.Roles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Description	Returns the account the access token belongs to, as stored right now.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	brokersdk.UserResponse
//	@Failure		401	{object}	brokersdk.APIError	"Invalid or missing access token"
//	@Failure		404	{object}	brokersdk.APIError	"Account no longer exists"
//	@Router			/user/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleUpdateMe godoc
//
//	@Summary		Update current account
//	@Description	Changes the caller's name and/or contact number. An empty body changes nothing.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.ProfileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	brokersdk.UserResponse
//	@Failure		401		{object}	brokersdk.APIError	"Invalid or missing access token"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/user/me [put].
func (h *AccountHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.ProfileUpdateRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	updated, err := h.Accounts.UpdateProfile(r.Context(), u.ID, domain.UserUpdate{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Replaces the caller's password. Every token issued before the change stops working.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	brokersdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	brokersdk.APIError	"Wrong current password"
//	@Failure		401		{object}	brokersdk.APIError	"Invalid token"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/user/password [put].
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.ChangePasswordRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	if err := h.Accounts.ChangePassword(r.Context(), u, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PasswordResetHandler serves the emailed reset-link flow.
type PasswordResetHandler struct {
	Resets    *service.PasswordResetService
	Validator *validx.Validator
}

// HandleRequest godoc
//
//	@Summary		Request a password reset
//	@Description	Mails a single-use reset link to the account's email.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.PasswordResetRequest	true	"Account email"
//	@Success		200		{object}	brokersdk.MessageResponse
//	@Failure		404		{object}	brokersdk.APIError	"No account with that email"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/user/password-reset-request [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.PasswordResetRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	if err := h.Resets.Request(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, brokersdk.MessageResponse{Message: "password reset link sent"})
}

// HandleReset godoc
//
//	@Summary		Reset password
//	@Description	Consumes a reset token and sets a new password. Every session of the account ends.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	brokersdk.MessageResponse
//	@Failure		401		{object}	brokersdk.APIError	"Invalid, used or expired token"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/user/reset-password [post].
func (h *PasswordResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.ResetPasswordRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	if err := h.Resets.Reset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, brokersdk.MessageResponse{Message: "password has been reset"})
}

// VerificationHandler serves email verification for the caller.
type VerificationHandler struct {
	Verification *service.VerificationService
	Validator    *validx.Validator
}

// HandleRequest godoc
//
//	@Summary		Request an email verification code
//	@Tags			Account
//	@Security		BearerAuth
//	@Success		204	"Code sent"
//	@Failure		401	{object}	brokersdk.APIError	"Invalid or missing access token"
//	@Failure		409	{object}	brokersdk.APIError	"Email already verified"
//	@Router			/user/verify-email/request [post].
func (h *VerificationHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Verification.Request(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleConfirm godoc
//
//	@Summary		Confirm email
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.VerifyEmailRequest	true	"Six-digit code"
//	@Success		200		{object}	brokersdk.UserResponse
//	@Failure		400		{object}	brokersdk.APIError	"Wrong or expired code"
//	@Failure		429		{object}	brokersdk.APIError	"Too many wrong codes"
//	@Router			/user/verify-email/confirm [post].
func (h *VerificationHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.VerifyEmailRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	verified, err := h.Verification.Confirm(r.Context(), u, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(verified))
}
