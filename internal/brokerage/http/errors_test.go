package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrAuthFailure, http.StatusUnauthorized, "invalid_grant"},
		{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{service.ErrMalformedToken, http.StatusUnauthorized, "invalid_token"},
		{service.ErrExpiredToken, http.StatusUnauthorized, "invalid_token"},
		{service.ErrInvalidScope, http.StatusUnauthorized, "invalid_token"},
		{service.ErrRevokedToken, http.StatusUnauthorized, "invalid_token"},
		{httpx.ErrMissingBearer, http.StatusUnauthorized, "invalid_token"},
		{service.ErrForbidden, http.StatusForbidden, "insufficient_scope"},
		{service.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("wrapped: %w", service.ErrEmailTaken), http.StatusConflict, "conflict"},
		{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_request"},
		{service.ErrWrongPassword, http.StatusBadRequest, "invalid_request"},
		{service.ErrReferralNotFound, http.StatusNotFound, "not_found"},
		{service.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts"},
		{service.ErrBootstrapDisabled, http.StatusNotFound, "not_found"},
		{&validx.ValidationError{Fields: map[string]string{"email": "required"}}, http.StatusUnprocessableEntity, "validation_error"},
		{errors.New("database is on fire"), http.StatusInternalServerError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := apiError(tt.err)
			require.Equal(t, tt.status, got.StatusCode)
			require.Equal(t, tt.code, got.Code)
		})
	}
}

func TestWriteErrorChallenge(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	writeError(rec, req, service.ErrExpiredToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t,
		`Bearer realm="brokerage", error="invalid_token", error_description="token has expired"`,
		rec.Header().Get("WWW-Authenticate"))

	rec = httptest.NewRecorder()
	writeError(rec, req, service.ErrUserNotFound)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, rec.Header().Get("WWW-Authenticate"))

	// A wrong current password does not challenge the bearer token.
	rec = httptest.NewRecorder()
	writeError(rec, req, service.ErrWrongPassword)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("WWW-Authenticate"))

	// Store failures are not auth failures.
	rec = httptest.NewRecorder()
	writeError(rec, req, errors.New("connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("WWW-Authenticate"))
}
