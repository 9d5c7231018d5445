package brokersdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the brokerage API. Anonymous endpoints live here;
// authenticated ones live on Session.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshLeeway is how long before expiry a Session refreshes its
	// access token. Defaults to 30s.
	RefreshLeeway time.Duration
}

// NewSDKClient returns a client with a 10 second timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		RefreshLeeway: 30 * time.Second,
	}
}

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an unauthenticated request.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// doJSON marshals in (when non-nil), sends it and decodes the response into
// out (when non-nil), expecting the given status.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	in, out any,
	expected int,
	headers map[string]string,
) error {
	body, hdrs, err := jsonBody(in, headers)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, method, path, body, hdrs)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, expected)
}

func jsonBody(in any, headers map[string]string) (io.Reader, map[string]string, error) {
	if in == nil {
		return nil, headers, nil
	}

	b, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	hdrs := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		hdrs[k] = v
	}
	return strings.NewReader(string(b)), hdrs, nil
}

// decodeJSON closes resp.Body. A status other than expected becomes an
// *APIError. A nil target skips decoding.
func decodeJSON(resp *http.Response, target any, expected int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		if err := parseErrorResponse(resp, body); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
