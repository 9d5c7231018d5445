package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/revocation"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/metricsx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"

	_ "github.com/aussiebroadwan/brokerage/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.Limits
	validator    *validx.Validator

	store    store.Store
	denylist revocation.Denylist
	metrics  *metricsx.Metrics

	Authenticator  *service.Authenticator
	Issuer         *service.SessionIssuer
	Authorizer     *service.Authorizer
	Accounts       *service.AccountService
	Bootstrap      *service.BootstrapService
	Referrals      *service.ReferralService
	Applications   *service.ApplicationService
	Intake         *service.IntakeService
	PasswordResets *service.PasswordResetService
	Verification   *service.VerificationService
}

// NewRouter creates a router. metrics may be nil, which disables the request
// metrics middleware and GET /metrics.
func NewRouter(
	buildVersion string,
	st store.Store,
	deny revocation.Denylist,
	metrics *metricsx.Metrics,
	limits httpx.Limits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		validator:    validx.New(),
		store:        st,
		denylist:     deny,
		metrics:      metrics,
	}

	// Logging runs first so the metrics middleware sees the request the mux
	// annotates with its pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if metrics != nil {
		r.middlewares = append(r.middlewares, metrics.Middleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerReferrals()
	r.registerApplications()
	r.registerIntake()
	r.registerAdmin()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Brokerage API
//	@version		0.1.0
//	@description	Accounts, referrals and mortgage applications for the brokerage website.
//	@description
//	@description				Tokens are HMAC-signed JWTs. Access tokens authorize API calls; refresh tokens only obtain new pairs.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/brokerage
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h for any authenticated caller.
func (r *Router) authed(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		Authn(r.Authorizer),
		r.limits.BySubject(r.limits.Moderate),
	)
}

// authedAs wraps h for callers holding one of roles.
func (r *Router) authedAs(h http.HandlerFunc, roles ...string) http.Handler {
	return httpx.Chain(h,
		Authn(r.Authorizer),
		RequireRoles(roles...),
		r.limits.BySubject(r.limits.Moderate),
	)
}

func (r *Router) registerAuth() {
	tokenHandler := &TokenHandler{
		Authenticator: r.Authenticator,
		Issuer:        r.Issuer,
		Metrics:       r.metrics,
	}

	// POST /token - strict rate limit by IP + login email to slow brute force
	r.Mux.Handle("POST /token",
		httpx.Chain(tokenHandler,
			r.limits.ByIP(r.limits.Strict),
			r.limits.ByIPAndField(r.limits.Strict, "username"),
		),
	)

	r.Mux.Handle("POST /token/refresh",
		httpx.Chain(&RefreshHandler{Issuer: r.Issuer},
			r.limits.ByIP(r.limits.Strict),
		),
	)

	logout := &LogoutHandler{Issuer: r.Issuer}
	r.Mux.Handle("POST /logout", r.authed(logout.ServeHTTP))
}

func (r *Router) registerAccount() {
	h := &AccountHandler{Accounts: r.Accounts, Validator: r.validator}

	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.limits.ByIP(r.limits.Strict),
		),
	)

	r.Mux.Handle("GET /user/me", r.authed(h.HandleMe))
	r.Mux.Handle("PUT /user/me", r.authed(h.HandleUpdateMe))
	r.Mux.Handle("PUT /user/password", r.authed(h.HandleChangePassword))

	resets := &PasswordResetHandler{Resets: r.PasswordResets, Validator: r.validator}
	r.Mux.Handle("POST /user/password-reset-request",
		httpx.Chain(http.HandlerFunc(resets.HandleRequest),
			r.limits.ByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /user/reset-password",
		httpx.Chain(http.HandlerFunc(resets.HandleReset),
			r.limits.ByIP(r.limits.Strict),
		),
	)

	verify := &VerificationHandler{Verification: r.Verification, Validator: r.validator}
	r.Mux.Handle("POST /user/verify-email/request", r.authed(verify.HandleRequest))
	r.Mux.Handle("POST /user/verify-email/confirm", r.authed(verify.HandleConfirm))
}

func (r *Router) registerReferrals() {
	h := &ReferralsHandler{Referrals: r.Referrals, Validator: r.validator}

	r.Mux.Handle("POST /submit-referral", r.authedAs(h.HandleSubmit, domain.RoleUser))
	r.Mux.Handle("GET /my-referrals", r.authedAs(h.HandleMine, domain.RoleUser))
	r.Mux.Handle("DELETE /delete-referral/{id}", r.authedAs(h.HandleDelete, domain.RoleUser))
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{Applications: r.Applications, Validator: r.validator}

	r.Mux.Handle("POST /user/mortgage-applications", r.authed(h.HandleSubmit))
	r.Mux.Handle("GET /user/mortgage-applications", r.authed(h.HandleMine))
	r.Mux.Handle("PUT /user/mortgage-application/{id}", r.authed(h.HandleUpdate))
	r.Mux.Handle("DELETE /user/mortgage-application/{id}", r.authed(h.HandleDelete))
}

func (r *Router) registerIntake() {
	h := &IntakeHandler{Intake: r.Intake, Validator: r.validator}

	// Anonymous forms - public tier by IP
	r.Mux.Handle("POST /api/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegistration),
			r.limits.ByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("POST /contact",
		httpx.Chain(http.HandlerFunc(h.HandleContact),
			r.limits.ByIP(r.limits.Public),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		Accounts:     r.Accounts,
		Referrals:    r.Referrals,
		Applications: r.Applications,
		Intake:       r.Intake,
		Validator:    r.validator,
	}
	admin := domain.RoleAdmin

	r.Mux.Handle("GET /admin/users/{role}", r.authedAs(h.HandleListUsers, admin))
	r.Mux.Handle("PUT /admin/users/{user_id}", r.authedAs(h.HandleUpdateUser, admin))
	r.Mux.Handle("DELETE /admin/users/{user_id}", r.authedAs(h.HandleDeleteUser, admin))
	r.Mux.Handle("PUT /admin/users/{user_id}/roles", r.authedAs(h.HandleSetRoles, admin))

	r.Mux.Handle("GET /admin/referrals", r.authedAs(h.HandleListReferrals, admin))
	r.Mux.Handle("GET /admin/referrals/{referral_id}", r.authedAs(h.HandleReferralsByReferrer, admin))
	r.Mux.Handle("PATCH /admin/referrals/{referral_id}/status", r.authedAs(h.HandleReferralStatus, admin))

	r.Mux.Handle("GET /admin/customer-applications/{user_id}", r.authedAs(h.HandleCustomerApplications, admin))
	r.Mux.Handle("GET /admin/registrations", r.authedAs(h.HandleRegistrations, admin))
	r.Mux.Handle("GET /admin/contacts", r.authedAs(h.HandleContacts, admin))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - strict rate limit by IP (one-time setup endpoint)
	h := &BootstrapHandler{Bootstrap: r.Bootstrap, Validator: r.validator}
	r.Mux.Handle("POST /bootstrap",
		httpx.Chain(h,
			r.limits.ByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Probes are not rate limited; orchestrators poll them.
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.denylist))

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
