package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// ApplicationsHandler serves mortgage applications to any authenticated
// caller.
type ApplicationsHandler struct {
	Applications *service.ApplicationService
	Validator    *validx.Validator
}

// HandleSubmit godoc
//
//	@Summary		Submit a mortgage application
//	@Description	form_data is stored as sent and must include customerName, customerEmail and customerPhone.
//	@Tags			Applications
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.ApplicationRequest	true	"Application form"
//	@Success		201		{object}	brokersdk.ApplicationResponse
//	@Failure		422		{object}	brokersdk.APIError	"Missing form fields"
//	@Router			/user/mortgage-applications [post].
func (h *ApplicationsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.ApplicationRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	app, err := h.Applications.Submit(r.Context(), u, req.FormData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toApplicationResponse(app))
}

// HandleMine godoc
//
//	@Summary		List my mortgage applications
//	@Description	Newest first, at most 100.
//	@Tags			Applications
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	brokersdk.ApplicationResponse
//	@Router			/user/mortgage-applications [get].
func (h *ApplicationsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	apps, err := h.Applications.Mine(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toApplicationResponses(apps))
}

// HandleUpdate godoc
//
//	@Summary		Replace a mortgage application's form
//	@Description	Owners may update their own applications; admins may update any. The new form must include customerName, customerEmail and customerPhone.
//	@Tags			Applications
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Application id"
//	@Param			request	body		brokersdk.ApplicationRequest	true	"Replacement form"
//	@Success		200		{object}	brokersdk.ApplicationResponse
//	@Failure		404		{object}	brokersdk.APIError	"No such application visible to the caller"
//	@Failure		422		{object}	brokersdk.APIError	"Missing form fields"
//	@Router			/user/mortgage-application/{id} [put].
func (h *ApplicationsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	var req brokersdk.ApplicationRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	app, err := h.Applications.Update(r.Context(), u, r.PathValue("id"), req.FormData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

// HandleDelete godoc
//
//	@Summary		Delete a mortgage application
//	@Description	Owners may delete their own applications; admins may delete any.
//	@Tags			Applications
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Application id"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	brokersdk.APIError	"No such application visible to the caller"
//	@Router			/user/mortgage-application/{id} [delete].
func (h *ApplicationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Applications.Delete(r.Context(), u, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
