package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/brokerage/internal/brokerage/http"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/revocation"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store/drivers/postgres"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store/drivers/sqlite"
	"github.com/aussiebroadwan/brokerage/pkg/jwtx"
	"github.com/aussiebroadwan/brokerage/pkg/metricsx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...BuildVersion=".
var BuildVersion = "v0.1.0"

// Application encapsulates the brokerage service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	denylist revocation.Denylist
	codec    *jwtx.Codec
	metrics  *metricsx.Metrics

	// Services
	authenticator       *service.Authenticator
	issuer              *service.SessionIssuer
	authorizer          *service.Authorizer
	accounts            *service.AccountService
	bootstrapService    *service.BootstrapService
	referrals           *service.ReferralService
	applications        *service.ApplicationService
	intake              *service.IntakeService
	passwordResets      *service.PasswordResetService
	verification        *service.VerificationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "brokerage",
			Version: cfg.Version,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New(),
	}

	codec, err := jwtx.NewCodec(cfg.CodecConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initDenylist(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("brokerage service starting", "addr", app.cfg.HTTPAddr, "version", app.cfg.Version)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeBackends()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the
// store and the denylist.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down brokerage service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("brokerage service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	var errs []error
	if err := app.denylist.Close(); err != nil {
		app.logger.Error("error closing denylist", "error", err)
		errs = append(errs, err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initDenylist picks the logout denylist backend.
func (app *Application) initDenylist(ctx context.Context) error {
	switch app.cfg.Revocation {
	case "redis":
		r := revocation.NewRedis(app.cfg.Redis)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.denylist = r
	case "none":
		app.denylist = revocation.None{}
	default:
		app.denylist = revocation.NewMemory()
	}

	app.logger.Info("revocation backend ready", "backend", app.cfg.Revocation)
	return nil
}

// initServices builds the business services.
func (app *Application) initServices() {
	app.authenticator = &service.Authenticator{
		Store:   app.db,
		Metrics: app.metrics,
	}
	app.issuer = &service.SessionIssuer{
		Codec:    app.codec,
		Store:    app.db,
		Denylist: app.denylist,
		Config:   app.cfg.TokenConfig(),
		Metrics:  app.metrics,
	}
	app.authorizer = &service.Authorizer{
		Codec:    app.codec,
		Store:    app.db,
		Denylist: app.denylist,
		Metrics:  app.metrics,
	}

	// Messages are logged rather than mailed; dev logs carry the secrets.
	notifier := service.LogNotifier{Reveal: app.cfg.Env == "dev"}

	app.accounts = &service.AccountService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:    app.db,
		Accounts: app.accounts,
		Token:    app.cfg.BootstrapToken,
	}
	app.referrals = &service.ReferralService{Store: app.db, Notifier: notifier}
	app.applications = &service.ApplicationService{Store: app.db}
	app.intake = &service.IntakeService{Store: app.db}
	app.passwordResets = &service.PasswordResetService{
		Store:    app.db,
		Notifier: notifier,
		BaseURL:  app.cfg.PublicBaseURL,
		TTL:      time.Duration(app.cfg.ResetTokenExpireMinutes) * time.Minute,
	}
	app.verification = &service.VerificationService{
		Store:    app.db,
		Notifier: notifier,
		Issuer:   app.cfg.Issuer,
		TTL:      time.Duration(app.cfg.VerificationCodeExpireMinutes) * time.Minute,
	}

	// Only the in-memory denylist needs pruning; redis keys expire on their own.
	var sweeper service.Sweeper
	if m, ok := app.denylist.(*revocation.Memory); ok {
		sweeper = m
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		sweeper,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP builds the router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.Version,
		app.db,
		app.denylist,
		app.metrics,
		app.cfg.RateLimits,
		app.logger,
	)

	router.Authenticator = app.authenticator
	router.Issuer = app.issuer
	router.Authorizer = app.authorizer
	router.Accounts = app.accounts
	router.Bootstrap = app.bootstrapService
	router.Referrals = app.referrals
	router.Applications = app.applications
	router.Intake = app.intake
	router.PasswordResets = app.passwordResets
	router.Verification = app.verification
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}
