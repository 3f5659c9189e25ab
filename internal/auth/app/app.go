// Package app assembles the auth service: identity provider clients,
// business services, and the HTTP server lifecycle.
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

	httpapi "github.com/renzoproject/workforce/internal/auth/http"
	"github.com/renzoproject/workforce/internal/auth/service"
	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/employeesdk"
	"github.com/renzoproject/workforce/pkg/idp"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	verifier jwtx.Verifier

	authService *service.AuthService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	verifier, err := jwtx.NewRemoteVerifier(ctx, jwtx.RemoteVerifierOptions{
		IssuerURI: cfg.IssuerURI,
		JWKSURL:   cfg.JWKSURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	provider := idp.NewClient(cfg.IdPBaseURL, cfg.IdPRealm, cfg.IdPClientID, cfg.IdPClientSecret)
	employees := employeesdk.New(ctx, employeesdk.Config{
		BaseURL:      cfg.EmployeeServiceURL,
		TokenURL:     cfg.IssuerURI + "/protocol/openid-connect/token",
		ClientID:     cfg.IdPClientID,
		ClientSecret: cfg.IdPClientSecret,
	})

	app.authService = &service.AuthService{
		IdP:           provider,
		Admin:         provider.Admin(ctx),
		Employees:     employees,
		SettlingDelay: cfg.SettlingDelay,
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initHTTP() {
	cookies := cookiex.Policy{
		Secure:   app.cfg.CookieSecure,
		SameSite: cookiex.ParseSameSite(app.cfg.CookieSameSite),
	}

	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		cookies,
		app.logger,
	)
	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
