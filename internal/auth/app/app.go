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

	httpapi "github.com/aussiebroadwan/designer/internal/auth/http"
	"github.com/aussiebroadwan/designer/internal/auth/service"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/internal/auth/store/drivers/filestore"
	"github.com/aussiebroadwan/designer/pkg/cryptox"
	"github.com/aussiebroadwan/designer/pkg/filedb"
	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the designer service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	issuer   *jwtx.Issuer
	verifier jwtx.Verifier

	// Services
	userService      *service.UserService
	sessionLedger    *service.SessionLedger
	tokenService     *service.TokenService
	heartbeatService *service.HeartbeatService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Log output goes to stdout.
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "designer",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	}))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{cfg: cfg, logger: logger}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initTokens(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapAdmin(ctx); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("designer starting", "port", app.cfg.Server.Port, "version", BuildVersion)

	// The heartbeat runs from boot; /stop and /start toggle it afterwards.
	app.heartbeatService.Start()

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down designer...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.heartbeatService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("designer stopped")
	return nil
}

// initStore opens the file-backed record store, creating the data
// directory if needed.
func (app *Application) initStore() error {
	dir := app.cfg.App.DataDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := filedb.Open(filestore.DBConfig(dir, app.cfg.App.LockTimeout, app.logger))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	app.db = filestore.NewStore(db)

	if err := app.db.Ping(context.Background()); err != nil {
		return fmt.Errorf("record store is not usable: %w", err)
	}

	app.logger.Info("record store ready", "data_dir", dir)
	return nil
}

// initTokens builds the HS256 signer, verifier and issuer from the
// configured secret.
func (app *Application) initTokens() error {
	key := []byte(app.cfg.App.JWTKey)

	signer, err := jwtx.NewSignerHS256(key)
	if err != nil {
		return fmt.Errorf("failed to create token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{Issuer: app.cfg.App.JWTIssuer})
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	issuer, err := jwtx.NewIssuer(jwtx.IssuerConfig{
		Signer:     signer,
		Verifier:   verifier,
		Issuer:     app.cfg.App.JWTIssuer,
		AccessTTL:  app.cfg.App.AccessTokenExpiry,
		RefreshTTL: app.cfg.App.RefreshTokenExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	app.verifier = verifier
	app.issuer = issuer
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.App.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: cryptox.NewHasher(pepper),
	}
	app.sessionLedger = &service.SessionLedger{Store: app.db}
	app.tokenService = &service.TokenService{
		Users:  app.userService,
		Ledger: app.sessionLedger,
		Issuer: app.issuer,
	}
	app.heartbeatService = service.NewHeartbeatService(app.logger, app.cfg.Heartbeat.Interval)

	return nil
}

// bootstrapAdmin creates the first admin account on an empty store.
func (app *Application) bootstrapAdmin(ctx context.Context) error {
	if app.cfg.App.AdminUser == "" {
		return nil
	}

	created, err := app.userService.EnsureAdminUser(ctx, app.cfg.App.AdminUser, app.cfg.App.AdminPasswordFile)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if created {
		app.logger.Warn("initial admin account created", "password_file", app.cfg.App.AdminPasswordFile)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.HeartbeatService = app.heartbeatService
	router.CredentialLimit = app.cfg.RateLimit.Credential
	router.LenientLimit = app.cfg.RateLimit.Lenient
	router.CORS = app.cfg.Server.CORS
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
