// Package app assembles the gateway: token verification, the OIDC login
// flow, the upstream proxies, and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/renzoproject/workforce/internal/gateway/http"
	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
	"golang.org/x/oauth2"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	verifier jwtx.Verifier

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	verifier, err := jwtx.NewRemoteVerifier(context.Background(), jwtx.RemoteVerifierOptions{
		IssuerURI: cfg.IssuerURI,
		JWKSURL:   cfg.JWKSURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) initHTTP() error {
	authTarget, err := url.Parse(app.cfg.AuthServiceURL)
	if err != nil {
		return fmt.Errorf("invalid auth service URL: %w", err)
	}
	employeeTarget, err := url.Parse(app.cfg.EmployeeServiceURL)
	if err != nil {
		return fmt.Errorf("invalid employee service URL: %w", err)
	}

	cookies := cookiex.Policy{
		Secure:   app.cfg.CookieSecure,
		SameSite: cookiex.ParseSameSite(app.cfg.CookieSameSite),
	}

	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.logger,
	)
	router.AuthTarget = authTarget
	router.EmployeeTarget = employeeTarget
	router.Login = &httpapi.LoginHandler{
		OAuth: &oauth2.Config{
			ClientID:     app.cfg.IdPClientID,
			ClientSecret: app.cfg.IdPClientSecret,
			RedirectURL:  app.cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  app.cfg.IssuerURI + "/protocol/openid-connect/auth",
				TokenURL: app.cfg.IssuerURI + "/protocol/openid-connect/token",
			},
		},
		Cookies:     cookies,
		FrontendURL: app.cfg.FrontendURL,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return nil
}
