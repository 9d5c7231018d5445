package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// AdminHandler serves the routes reserved for role "admin".
type AdminHandler struct {
	Accounts     *service.AccountService
	Referrals    *service.ReferralService
	Applications *service.ApplicationService
	Intake       *service.IntakeService
	Validator    *validx.Validator
}

// HandleListUsers godoc
//
//	@Summary		List accounts by role
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			role	path		string	true	"user, admin or customer"
//	@Success		200		{array}		brokersdk.UserResponse
//	@Failure		400		{object}	brokersdk.APIError	"Unknown role"
//	@Failure		403		{object}	brokersdk.APIError	"Role admin required"
//	@Router			/admin/users/{role} [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.ListByRole(r.Context(), r.PathValue("role"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponses(users))
}

// HandleUpdateUser godoc
//
//	@Summary		Update an account's profile
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string							true	"Account id"
//	@Param			request	body		brokersdk.ProfileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	brokersdk.UserResponse
//	@Failure		400		{object}	brokersdk.APIError	"No fields to update"
//	@Failure		404		{object}	brokersdk.APIError	"No such account"
//	@Router			/admin/users/{user_id} [put].
func (h *AdminHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.ProfileUpdateRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	u, err := h.Accounts.AdminUpdate(r.Context(), r.PathValue("user_id"), domain.UserUpdate{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleSetRoles godoc
//
//	@Summary		Replace an account's roles
//	@Description	Route checks see the new roles on the account's next request; token role snapshots change on refresh.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string						true	"Account id"
//	@Param			request	body		brokersdk.RolesUpdateRequest	true	"New roles"
//	@Success		200		{object}	brokersdk.UserResponse
//	@Failure		404		{object}	brokersdk.APIError	"No such account"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/admin/users/{user_id}/roles [put].
func (h *AdminHandler) HandleSetRoles(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.RolesUpdateRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	u, err := h.Accounts.SetRoles(r.Context(), r.PathValue("user_id"), req.Roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleDeleteUser godoc
//
//	@Summary		Delete an account
//	@Description	Outstanding tokens of the account stop resolving immediately.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			user_id	path	string	true	"Account id"
//	@Success		204		"Deleted"
//	@Failure		404		{object}	brokersdk.APIError	"No such account"
//	@Router			/admin/users/{user_id} [delete].
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.DeleteUser(r.Context(), r.PathValue("user_id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReferralsByReferrer godoc
//
//	@Summary		List referrals made under a referral id
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			referral_id	path	string	true	"Referrer's referral id"
//	@Success		200			{array}	brokersdk.ReferralResponse
//	@Router			/admin/referrals/{referral_id} [get].
func (h *AdminHandler) HandleReferralsByReferrer(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Referrals.ByReferrer(r.Context(), r.PathValue("referral_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toReferralResponses(refs))
}

// HandleReferralStatus godoc
//
//	@Summary		Set a referral's status
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Param			referral_id	path	string							true	"Referral record id"
//	@Param			request		body	brokersdk.StatusUpdateRequest	true	"Pending, Approved or Rejected"
//	@Success		204			"Updated"
//	@Failure		400			{object}	brokersdk.APIError	"Invalid status"
//	@Failure		404			{object}	brokersdk.APIError	"No such referral"
//	@Router			/admin/referrals/{referral_id}/status [patch].
func (h *AdminHandler) HandleReferralStatus(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.StatusUpdateRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	if _, err := h.Referrals.UpdateStatus(r.Context(), r.PathValue("referral_id"), req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListReferrals godoc
//
//	@Summary		List all referrals
//	@Description	Joined with the referrer's name and email, newest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Pending, Approved or Rejected"
//	@Success		200		{array}		brokersdk.ReferralResponse
//	@Failure		400		{object}	brokersdk.APIError	"Invalid status"
//	@Router			/admin/referrals [get].
func (h *AdminHandler) HandleListReferrals(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Referrals.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toReferralResponses(refs))
}

// HandleCustomerApplications godoc
//
//	@Summary		List an account's mortgage applications
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			user_id	path		string	true	"Account id"
//	@Success		200		{array}		brokersdk.ApplicationResponse
//	@Failure		404		{object}	brokersdk.APIError	"No applications"
//	@Router			/admin/customer-applications/{user_id} [get].
func (h *AdminHandler) HandleCustomerApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Applications.ForUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toApplicationResponses(apps))
}

// HandleRegistrations godoc
//
//	@Summary		List interest registrations
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	brokersdk.RegistrationResponse
//	@Router			/admin/registrations [get].
func (h *AdminHandler) HandleRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.Intake.Registrations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]brokersdk.RegistrationResponse, len(regs))
	for i, reg := range regs {
		out[i] = toRegistrationResponse(reg)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleContacts godoc
//
//	@Summary		List contact forms
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	brokersdk.ContactResponse
//	@Router			/admin/contacts [get].
func (h *AdminHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Intake.Contacts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]brokersdk.ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = toContactResponse(c)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
