package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(t *testing.T, h http.Handler, remote, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		headers   map[string]string
		direct    string
		forwarded string
	}{
		{name: "remote addr", direct: "192.168.1.1", forwarded: "192.168.1.1"},
		{name: "forwarded for first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, direct: "192.168.1.1", forwarded: "203.0.113.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 203.0.113.2 "}, direct: "192.168.1.1", forwarded: "203.0.113.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.direct, httpx.ClientIP(req))
			require.Equal(t, tc.forwarded, httpx.ForwardedClientIP(req))
			require.Equal(t, tc.direct, httpx.Limits{}.ClientKey()(req))
			require.Equal(t, tc.forwarded, httpx.Limits{TrustProxyHeaders: true}.ClientKey()(req))
		})
	}
}

func TestFormFieldKey(t *testing.T) {
	form := url.Values{"email": {" Alice@Example.com "}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.Equal(t, "alice@example.com", httpx.FormFieldKey("email")(req))

	// The form stays readable for the handler.
	require.Equal(t, " Alice@Example.com ", req.FormValue("email"))
}

func TestCompositeKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	key := httpx.CompositeKey(":", httpx.SubjectKey, httpx.ClientIP)
	require.Equal(t, "192.168.1.1", key(req))

	req = req.WithContext(httpx.WithSubject(req.Context(), "user-1"))
	require.Equal(t, "user-1:192.168.1.1", key(req))
}

func TestRateLimit(t *testing.T) {
	t.Run("blocks over the burst", func(t *testing.T) {
		h := httpx.Limits{}.ByIP(httpx.Limit{Requests: 3, Window: time.Minute, Burst: 3})(okHandler)

		for i := range 3 {
			rec := hit(t, h, "192.168.1.1:1", "/")
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := hit(t, h, "192.168.1.1:1", "/")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.Contains(t, rec.Body.String(), "Too many requests")
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := httpx.Limits{}.ByIPAndField(httpx.Limit{Requests: 1, Window: time.Minute, Burst: 1}, "email")(okHandler)

		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/?email=a@x.com").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(t, h, "10.0.0.1:1", "/?email=a@x.com").Code)
		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/?email=b@x.com").Code)
		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.2:1", "/?email=a@x.com").Code)
	})

	t.Run("empty key passes", func(t *testing.T) {
		h := httpx.RateLimit(httpx.Limit{Requests: 1, Window: time.Minute, Burst: 1}, func(*http.Request) string { return "" })(okHandler)
		for range 3 {
			require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/").Code)
		}
	})

	t.Run("disabled limit passes", func(t *testing.T) {
		h := httpx.Limits{}.ByIP(httpx.Limit{})(okHandler)
		for range 10 {
			require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/").Code)
		}
	})

	t.Run("spoofed forwarding headers share the remote bucket", func(t *testing.T) {
		h := httpx.Limits{}.ByIP(httpx.Limit{Requests: 1, Window: time.Minute, Burst: 1})(okHandler)

		for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1"
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if i == 0 {
				require.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Equal(t, http.StatusTooManyRequests, rec.Code)
			}
		}
	})

	t.Run("trusted proxy keys by forwarded address", func(t *testing.T) {
		limits := httpx.Limits{TrustProxyHeaders: true}
		h := limits.ByIP(httpx.Limit{Requests: 1, Window: time.Minute, Burst: 1})(okHandler)

		for _, xff := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1"
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, xff)
		}
	})

	t.Run("burst defaults to requests", func(t *testing.T) {
		h := httpx.Limits{}.ByIP(httpx.Limit{Requests: 2, Window: time.Hour})(okHandler)
		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/").Code)
		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1", "/").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(t, h, "10.0.0.1:1", "/").Code)
	})
}

func TestDefaultLimits(t *testing.T) {
	l := httpx.DefaultLimits()
	for name, limit := range map[string]httpx.Limit{"strict": l.Strict, "moderate": l.Moderate, "public": l.Public} {
		require.False(t, limit.Disabled(), name)
		require.Positive(t, limit.Burst, name)
	}
	require.Less(t, l.Strict.Requests, l.Moderate.Requests)
}

func BenchmarkRateLimit(b *testing.B) {
	h := httpx.Limits{}.ByIP(httpx.Limit{Requests: 1_000_000, Window: time.Minute, Burst: 1000})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	b.ResetTimer()
	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
