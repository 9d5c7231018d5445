package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/revocation"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SecretKey = "app-test-secret"
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "brokerage.db")
	cfg.LogLevel = "error"
	return cfg
}

func TestNewWiresEverything(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.closeBackends() })

	require.IsType(t, &revocation.Memory{}, app.denylist)
	require.NotNil(t, app.housekeepingService.Denylist)

	for _, path := range []string{"/livez", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewWithoutDenylist(t *testing.T) {
	cfg := testConfig(t)
	cfg.Revocation = "none"

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.closeBackends() })

	require.Equal(t, revocation.None{}, app.denylist)
	require.Nil(t, app.housekeepingService.Denylist)
}

func TestNewRejectsBadAlgorithm(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithm = "none"

	_, err := New(cfg)
	require.ErrorContains(t, err, "token codec")
}
