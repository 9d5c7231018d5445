package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

type BootstrapHandler struct {
	Bootstrap *service.BootstrapService
	Validator *validx.Validator
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the first admin account. Only available when a bootstrap token is configured, and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		brokersdk.BootstrapRequest	true	"Admin account"
//	@Success		201					{object}	brokersdk.UserResponse		"Created admin"
//	@Failure		401					{object}	brokersdk.APIError			"Missing or invalid bootstrap token"
//	@Failure		404					{object}	brokersdk.APIError			"Bootstrap not enabled"
//	@Failure		409					{object}	brokersdk.APIError			"Already bootstrapped"
//	@Failure		422					{object}	brokersdk.APIError			"Validation failed"
//	@Router			/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.Bootstrap.Token == "" {
		writeError(w, r, service.ErrBootstrapDisabled)
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		writeError(w, r, service.ErrBootstrapUnauthorized)
		return
	}

	// 3. Parse request body and validate
	var req brokersdk.BootstrapRequest
	if !bind(w, r, h.Validator, &req) {
		return
	}

	// 4. Perform bootstrap
	u, err := h.Bootstrap.Bootstrap(r.Context(), token, req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	l.Info("bootstrap completed", "admin_user_id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}
