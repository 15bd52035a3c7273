package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/plshark/userauth/internal/http"
	"github.com/plshark/userauth/internal/service"
	"github.com/plshark/userauth/internal/store"
	"github.com/plshark/userauth/internal/store/drivers/sqlite"
	"github.com/plshark/userauth/pkg/cryptox"
	"github.com/plshark/userauth/pkg/jwtx"
	"github.com/plshark/userauth/pkg/slogx"
	"github.com/plshark/userauth/pkg/throttle"
)

// BuildVersion is overridable at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	hasher *cryptox.Hasher
	codec  *jwtx.Codec

	loginThrottle  *throttle.LoginThrottle
	requestLimiter *throttle.RequestLimiter

	authService      *service.AuthService
	settingsService  *service.UserAuthSettingsService
	userService      *service.UserService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. Any error
// here is fatal: a misconfigured signing algorithm must never take traffic.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "userauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initHasher(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCodec(); err != nil {
		return nil, err
	}

	app.initThrottling()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.ensureBootstrapUser(ctx); err != nil {
		return err
	}

	app.logger.Info("userauth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"algorithm", app.codec.AlgorithmName())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down userauth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("userauth service stopped")
	return nil
}

func (app *Application) initHasher() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initCodec() error {
	factory := jwtx.NewFactory(jwtx.DefaultBuilders()...)
	alg, err := factory.Build(jwtx.Config{
		Algorithm:   app.cfg.Algorithm,
		Secret:      app.cfg.Secret,
		KeyFile:     app.cfg.KeyFile,
		KeyPassword: app.cfg.KeyPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to build signing algorithm: %w", err)
	}

	if alg.Name() == jwtx.AlgNone {
		app.logger.Warn("tokens are unsigned (algorithm none); do not use outside local development")
	}

	app.codec = jwtx.NewCodec(alg, app.cfg.Issuer)
	return nil
}

func (app *Application) initThrottling() {
	app.loginThrottle = throttle.NewLoginThrottle(app.cfg.ThrottleMaxAttempts, app.cfg.ThrottleWindow)
	app.requestLimiter = throttle.NewRequestLimiter(app.cfg.RateLimitMaxReqs, app.cfg.RateLimitWindow)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.settingsService = &service.UserAuthSettingsService{Settings: app.db.AuthSettings()}

	app.authService = &service.AuthService{
		Users:            app.db.Users(),
		Settings:         app.settingsService,
		Hasher:           app.hasher,
		Codec:            app.codec,
		TokenTTL:         app.cfg.TokenExpiration,
		DirectoryTimeout: app.cfg.DirectoryTimeout,
	}

	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Hasher: app.hasher}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.loginThrottle,
		app.requestLimiter,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.SettingsService = app.settingsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) ensureBootstrapUser(ctx context.Context) error {
	if app.cfg.BootstrapUsername == "" || app.cfg.BootstrapPassword == "" {
		return nil
	}
	if err := app.bootstrapService.EnsureAdminUser(ctx, app.cfg.BootstrapUsername, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	return nil
}
