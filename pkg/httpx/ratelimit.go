package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a token bucket allowing Requests per Window with the given Burst.
type Limit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	Burst    int           `yaml:"burst"`
}

// Limits groups the tiers applied by the router.
type Limits struct {
	// Strict guards credential endpoints (token, register, password reset).
	Strict Limit `yaml:"strict"`
	// Moderate applies to authenticated routes, keyed by caller.
	Moderate Limit `yaml:"moderate"`
	// Public applies to anonymous intake forms.
	Public Limit `yaml:"public"`

	// TrustProxyHeaders keys by X-Forwarded-For and X-Real-IP. Enable it only
	// behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// DefaultLimits returns the production tiers.
func DefaultLimits() Limits {
	return Limits{
		Strict:   Limit{Requests: 5, Window: time.Minute, Burst: 5},
		Moderate: Limit{Requests: 60, Window: time.Minute, Burst: 60},
		Public:   Limit{Requests: 30, Window: time.Minute, Burst: 10},
	}
}

// Disabled reports whether the limit lets every request through.
func (l Limit) Disabled() bool {
	return l.Requests <= 0 || l.Window <= 0
}

// KeyExtractor groups requests into rate limiting buckets.
type KeyExtractor func(*http.Request) string

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// ignored.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ForwardedClientIP prefers the first X-Forwarded-For hop, then X-Real-IP,
// then RemoteAddr. Clients can forge both headers.
func ForwardedClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return ClientIP(r)
}

// ClientKey returns the extractor used to identify a caller's address.
func (l Limits) ClientKey() KeyExtractor {
	if l.TrustProxyHeaders {
		return ForwardedClientIP
	}
	return ClientIP
}

// SubjectKey keys by the authenticated subject set via WithSubject.
func SubjectKey(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// FormFieldKey keys by a form or query parameter, e.g. the login email.
func FormFieldKey(field string) KeyExtractor {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(r.FormValue(field)))
	}
}

// CompositeKey joins the non-empty keys produced by each extractor.
func CompositeKey(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

const limiterIdleSweep = 5 * time.Minute

type bucketSet struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	lastSweep time.Time
}

func (b *bucketSet) get(key string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastSweep) > limiterIdleSweep {
		b.lastSweep = time.Now()
		for k, l := range b.buckets {
			// A full bucket has not been touched recently.
			if l.Tokens() >= float64(b.burst) {
				delete(b.buckets, k)
			}
		}
	}

	l, ok := b.buckets[key]
	if !ok {
		l = rate.NewLimiter(b.limit, b.burst)
		b.buckets[key] = l
	}
	return l
}

// RateLimit rejects requests over limit with 429 and a Retry-After header.
// Requests for which key yields "" pass through.
func RateLimit(limit Limit, key KeyExtractor) Middleware {
	if limit.Disabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := limit.Burst
	if burst <= 0 {
		burst = limit.Requests
	}
	set := &bucketSet{
		limit:     rate.Limit(float64(limit.Requests) / limit.Window.Seconds()),
		burst:     burst,
		buckets:   make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			l := set.get(k)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"detail": "Too many requests. Please try again later.",
			})
		})
	}
}

// ByIP limits per client address.
func (l Limits) ByIP(limit Limit) Middleware {
	return RateLimit(limit, l.ClientKey())
}

// BySubject limits per authenticated caller, falling back to the client
// address. It must run after Authn.
func (l Limits) BySubject(limit Limit) Middleware {
	return RateLimit(limit, CompositeKey(":", SubjectKey, l.ClientKey()))
}

// ByIPAndField limits per client address and form field value.
func (l Limits) ByIPAndField(limit Limit, field string) Middleware {
	return RateLimit(limit, CompositeKey(":", l.ClientKey(), FormFieldKey(field)))
}
