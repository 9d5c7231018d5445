package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// ReferralsHandler serves the referral routes of role "user".
type ReferralsHandler struct {
	Referrals *service.ReferralService
	Validator *validx.Validator
}

// HandleSubmit godoc
//
//	@Summary		Submit a referral
//	@Tags			Referrals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.ReferralRequest	true	"Referred person"
//	@Success		201		{object}	brokersdk.ReferralResponse
//	@Failure		400		{object}	brokersdk.APIError	"Caller has no referral id"
//	@Failure		403		{object}	brokersdk.APIError	"Role user required"
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/submit-referral [post].
func (h *ReferralsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.ReferralRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	ref, err := h.Referrals.Submit(r.Context(), u, service.NewReferral{
		Name:  req.ReferralName,
		Email: req.ReferralEmail,
		Phone: req.ReferralPhone,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toReferralResponse(ref))
}

// HandleMine godoc
//
//	@Summary		List my referrals
//	@Tags			Referrals
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		brokersdk.ReferralResponse
//	@Failure		403	{object}	brokersdk.APIError	"Role user required"
//	@Router			/my-referrals [get].
func (h *ReferralsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	refs, err := h.Referrals.Mine(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toReferralResponses(refs))
}

// HandleDelete godoc
//
//	@Summary		Delete one of my referrals
//	@Tags			Referrals
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Referral id"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	brokersdk.APIError	"No such referral of the caller"
//	@Router			/delete-referral/{id} [delete].
func (h *ReferralsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Referrals.DeleteMine(r.Context(), u, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
