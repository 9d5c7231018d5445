package brokersdk

import (
	"context"
	"net/http"
)

// SubmitRegistration records a mortgage interest registration.
func (c *SDKClient) SubmitRegistration(ctx context.Context, req RegistrationRequest) (*RegistrationResponse, error) {
	var out RegistrationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", req, &out, http.StatusCreated, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContact records a contact form.
func (c *SDKClient) SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	var out ContactResponse
	if err := c.doJSON(ctx, http.MethodPost, "/contact", req, &out, http.StatusCreated, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK, nil); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &health, http.StatusOK, nil); err != nil {
		return nil, err
	}
	return &health, nil
}
