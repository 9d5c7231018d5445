package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// IntakeHandler serves the anonymous website forms.
type IntakeHandler struct {
	Intake    *service.IntakeService
	Validator *validx.Validator
}

// HandleRegistration godoc
//
//	@Summary		Register interest in a mortgage product
//	@Tags			Intake
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.RegistrationRequest	true	"Registration"
//	@Success		201		{object}	brokersdk.RegistrationResponse
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/api/register [post].
func (h *IntakeHandler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.RegistrationRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	reg, err := h.Intake.Register(r.Context(), domain.Registration{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		MortgageType: req.MortgageType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRegistrationResponse(reg))
}

// HandleContact godoc
//
//	@Summary		Submit the contact form
//	@Tags			Intake
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.ContactRequest	true	"Contact form"
//	@Success		201		{object}	brokersdk.ContactResponse
//	@Failure		422		{object}	brokersdk.APIError	"Validation failed"
//	@Router			/contact [post].
func (h *IntakeHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var req brokersdk.ContactRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	c, err := h.Intake.Contact(r.Context(), domain.ContactSubmission{
		FullName: req.FullName,
		Company:  req.Company,
		Email:    req.Email,
		Phone:    req.Phone,
		Service:  req.Service,
		Budget:   req.Budget,
		Message:  req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toContactResponse(c))
}
