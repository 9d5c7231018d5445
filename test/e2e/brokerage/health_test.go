//go:build e2e

package brokerage_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/brokerage/pkg/brokersdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	client := brokersdk.NewSDKClient(setupContainer(t, map[string]string{"VERSION": "e2e"}))

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "e2e", live.Version)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks["database"])
	require.Equal(t, "ok", ready.Checks["revocation"])
}

// TestStrictRateLimit runs with production limits: the sixth login attempt
// inside a minute from one address is refused.
func TestStrictRateLimit(t *testing.T) {
	client := brokersdk.NewSDKClient(setupContainer(t, map[string]string{"RATELIMIT_DISABLED": "false"}))

	var last error
	for range 6 {
		_, last = client.PasswordGrant(t.Context(), "nobody@x.com", "secret123")
	}
	requireStatus(t, last, http.StatusTooManyRequests)
}
