package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/aussiebroadwan/brokerage/pkg/cryptox"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

var (
	errRevoked = brokersdk.ErrInvalidToken.WithDescription("token has been revoked")

	errTooManyAttempts = brokersdk.NewAPIError(http.StatusTooManyRequests, "too_many_attempts",
		"too many wrong codes; request a new one")

	errBootstrapUnauthorized = brokersdk.NewAPIError(http.StatusUnauthorized, "unauthorized",
		"missing or invalid bootstrap token")
)

// apiError maps a service error onto the response the client sees. Anything
// unrecognised is a 500.
func apiError(err error) *brokersdk.APIError {
	var verr *validx.ValidationError
	if errors.As(err, &verr) {
		return brokersdk.NewValidationError(verr.Fields)
	}

	switch {
	// Authentication and authorization.
	case errors.Is(err, service.ErrAuthFailure):
		return brokersdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrExpiredToken):
		return brokersdk.ErrExpiredToken
	case errors.Is(err, service.ErrInvalidScope):
		return brokersdk.ErrInvalidScope
	case errors.Is(err, service.ErrRevokedToken):
		return errRevoked
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrMalformedToken),
		errors.Is(err, httpx.ErrMissingBearer):
		return brokersdk.ErrInvalidToken
	case errors.Is(err, service.ErrForbidden):
		return brokersdk.ErrForbidden
	case errors.Is(err, service.ErrUserNotFound):
		return brokersdk.ErrUserNotFound

	// Request bodies.
	case errors.Is(err, httpx.ErrEmptyBody), errors.Is(err, httpx.ErrInvalidJSON):
		return brokersdk.ErrInvalidRequest.WithDescription("request body must be valid JSON")
	case errors.Is(err, httpx.ErrUnsupportedType):
		return brokersdk.ErrInvalidRequest.WithDescription("unsupported content type")
	case errors.Is(err, cryptox.ErrPasswordTooLong):
		return brokersdk.NewValidationError(map[string]string{"password": "must be at most 72 bytes"})

	// Accounts and CRUD.
	case errors.Is(err, service.ErrEmailTaken):
		return brokersdk.ErrConflict.WithDescription("email already registered")
	case errors.Is(err, service.ErrAlreadyVerified):
		return brokersdk.ErrConflict.WithDescription("email already verified")
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNoReferralID),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrWrongPassword):
		return brokersdk.ErrInvalidRequest.WithDescription(err.Error())
	case errors.Is(err, service.ErrReferralNotFound),
		errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrNoApplications):
		return brokersdk.ErrNotFound.WithDescription(err.Error())
	case errors.Is(err, service.ErrInvalidResetToken):
		return brokersdk.ErrInvalidToken.WithDescription(err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		return errTooManyAttempts

	// Bootstrap.
	case errors.Is(err, service.ErrBootstrapDisabled):
		return brokersdk.ErrNotFound.WithDescription("bootstrap is not enabled")
	case errors.Is(err, service.ErrBootstrapAlready):
		return brokersdk.ErrConflict.WithDescription("system already bootstrapped")
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		return errBootstrapUnauthorized
	}

	return brokersdk.ErrServerError
}

// writeError is the single exit for failed requests. 401 and 403 carry an
// RFC 6750 challenge; 500s are logged with the underlying error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		httpx.WriteBearerChallenge(w, apiErr.Code, apiErr.Description)
	case http.StatusInternalServerError:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}

	apiErr.WriteError(w)
}
