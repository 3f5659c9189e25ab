// Package http wires the auth service's HTTP surface: the cookie-based
// session lifecycle, registration, and identity endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/renzoproject/workforce/internal/auth/service"
	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// Routes is the auth service's authorization table. Only the per-user role
// lookup needs an authority beyond authentication; roles/me is listed first
// so the wildcard does not capture it.
func Routes() httpx.RouteTable {
	return httpx.RouteTable{
		{Method: http.MethodGet, Pattern: "/auth/roles/me", Authority: ""},
		{Method: http.MethodGet, Pattern: "/auth/roles/*", Authority: "ADMIN"},
	}
}

// PublicPaths are the session lifecycle endpoints: they authenticate
// against the provider themselves (or clear state), so the resource-server
// chain must not demand a bearer token first.
func PublicPaths() []string {
	return []string{
		"/auth/login",
		"/auth/register",
		"/auth/refresh",
		"/auth/logout",
		"/livez",
		"/readyz",
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	cookies     cookiex.Policy
	AuthService *service.AuthService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	cookies cookiex.Policy,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		cookies:      cookies,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ResourceServer(httpx.ResourceServerConfig{
			Verifier:    verifier,
			Routes:      Routes(),
			PublicPaths: PublicPaths(),
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerIdentity()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		AuthService: r.AuthService,
		Cookies:     r.cookies,
	}

	// Credential endpoints carry strict per-IP limits against brute force.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.HandleFunc("POST /auth/logout", h.HandleLogout)
	r.Mux.HandleFunc("GET /auth/session", h.HandleSession)
}

func (r *Router) registerIdentity() {
	h := &IdentityHandler{AuthService: r.AuthService}

	r.Mux.HandleFunc("GET /auth/user-info", h.HandleUserInfo)
	r.Mux.HandleFunc("GET /auth/token", h.HandleToken)
	r.Mux.HandleFunc("GET /auth/roles/me", h.HandleMyRoles)
	r.Mux.HandleFunc("GET /auth/roles/{userId}", h.HandleUserRoles)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", httpx.LivezHandler(r.startTime, r.buildVersion))
	// The auth service holds no local state; readiness equals liveness.
	r.Mux.Handle("GET /readyz", httpx.LivezHandler(r.startTime, r.buildVersion))
}
