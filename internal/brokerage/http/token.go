package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/metricsx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// TokenHandler serves POST /token.
// Accepts application/x-www-form-urlencoded like an OAuth2 password grant.
type TokenHandler struct {
	Authenticator *service.Authenticator
	Issuer        *service.SessionIssuer
	Metrics       *metricsx.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges an email and password for an access token and a refresh token.
//	@Description	The email may be sent as "username" (OAuth2 password form) or "email".
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					false	"Account email"
//	@Param			email		formData	string					false	"Account email (alternative to username)"
//	@Param			password	formData	string					true	"Password"
//	@Success		200			{object}	brokersdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, roles"
//	@Failure		400			{object}	brokersdk.APIError		"Not a form body"
//	@Failure		401			{object}	brokersdk.APIError		"Incorrect email or password"
//	@Failure		422			{object}	brokersdk.APIError		"Missing fields"
//	@Failure		500			{object}	brokersdk.APIError		"Internal server error"
//	@Header			200			{string}	Cache-Control			"no-store"
//	@Router			/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Ensure the right content-type
	if r.Header.Get("Content-Type") != "" && !httpx.IsForm(r) {
		brokersdk.ErrInvalidRequest.WithDescription("content type must be application/x-www-form-urlencoded").WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		brokersdk.ErrInvalidRequest.WithDescription("invalid form body").WriteError(w)
		return
	}

	// 2. Collect credentials
	email := strings.TrimSpace(r.PostFormValue("username"))
	if email == "" {
		email = strings.TrimSpace(r.PostFormValue("email"))
	}
	password := r.PostFormValue("password")

	missing := map[string]string{}
	if email == "" {
		missing["username"] = "required"
	}
	if password == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		brokersdk.NewValidationError(missing).WriteError(w)
		return
	}

	// 3. Authenticate and issue
	u, err := h.Authenticator.Authenticate(ctx, email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.Issuer.Issue(ctx, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Metrics.RecordIssued("login")

	slogx.FromContext(ctx).Info("login succeeded", "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// RefreshHandler serves POST /token/refresh.
type RefreshHandler struct {
	Issuer *service.SessionIssuer
}

// ServeHTTP godoc
//
//	@Summary		Refresh tokens
//	@Description	Trades a refresh token for a new token pair. Roles are re-read from the store.
//	@Description	The previous access token is not revoked and stays valid until it expires.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		brokersdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	brokersdk.TokenResponse		"New token pair"
//	@Failure		401		{object}	brokersdk.APIError			"Invalid, expired, revoked or wrong-scope token"
//	@Failure		404		{object}	brokersdk.APIError			"Token subject no longer exists"
//	@Failure		422		{object}	brokersdk.APIError			"Missing refresh_token"
//	@Router			/token/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if httpx.IsForm(r) {
		refreshToken = r.PostFormValue("refresh_token")
	} else {
		var req brokersdk.RefreshRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		refreshToken = req.RefreshToken
	}

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		brokersdk.NewValidationError(map[string]string{"refresh_token": "required"}).WriteError(w)
		return
	}

	pair, _, err := h.Issuer.Reissue(r.Context(), refreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// LogoutHandler serves POST /logout.
type LogoutHandler struct {
	Issuer *service.SessionIssuer
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented access token and, when given, the caller's refresh token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	brokersdk.LogoutRequest	false	"Refresh token to revoke as well"
//	@Success		204		"Logged out"
//	@Failure		401		{object}	brokersdk.APIError	"Invalid or missing access token"
//	@Router			/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, claims, ok := callerFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrInvalidToken)
		return
	}

	// The body is optional.
	var req brokersdk.LogoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeError(w, r, err)
		return
	}

	if err := h.Issuer.Logout(r.Context(), u, claims, req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
