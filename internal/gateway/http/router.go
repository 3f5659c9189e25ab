// Package http wires the edge gateway: token relay, CORS, the
// resource-server chain, claims propagation, the browser login flow, and
// the reverse proxies to the services behind it.
package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// Routes is the gateway's authorization table for the employee API. The
// employee service runs the same table behind the proxy, so a request that
// slips past one hop is still stopped at the next.
func Routes() httpx.RouteTable {
	return httpx.RouteTable{
		{Method: http.MethodGet, Pattern: "/api/v1/employees", Authority: "VIEW_EMPLOYEE_LIST"},
		{Method: http.MethodGet, Pattern: "/api/v1/employees/sorted", Authority: "VIEW_EMPLOYEE_LIST"},
		{Method: http.MethodGet, Pattern: "/api/v1/employees/search", Authority: "VIEW_EMPLOYEE_LIST"},
		{Method: http.MethodGet, Pattern: "/api/v1/employees/job-title", Authority: "VIEW_EMPLOYEE_LIST"},
		{Method: http.MethodGet, Pattern: "/api/v1/employees/*", Authority: "VIEW_EMPLOYEE_DETAIL"},
		{Method: http.MethodPost, Pattern: "/api/v1/employees", Authority: "CREATE_EMPLOYEE"},
		{Method: http.MethodPut, Pattern: "/api/v1/employees/*", Authority: "VIEW_EMPLOYEE_UPDATE"},
		{Method: http.MethodPatch, Pattern: "/api/v1/employees/*/contact", Authority: "VIEW_EMPLOYEE_UPDATE"},
		{Method: http.MethodPatch, Pattern: "/api/v1/employees/*/address", Authority: "VIEW_EMPLOYEE_UPDATE"},
		{Method: http.MethodPatch, Pattern: "/api/v1/employees/*/emergency-contact", Authority: "VIEW_EMPLOYEE_UPDATE"},
		{Method: http.MethodDelete, Pattern: "/api/v1/employees/*", Authority: "VIEW_EMPLOYEE_DELETE"},
	}
}

// PublicPrefixes bypass the resource-server chain. The auth service's
// session endpoints authenticate against the provider themselves, and the
// login flow endpoints exist to obtain a token in the first place.
func PublicPrefixes() []string {
	return []string{
		"/public/",
		"/auth/",
		"/oauth2/",
		"/login/oauth2/",
		"/swagger-ui",
		"/v3/api-docs",
	}
}

// PublicPaths are exact-match public paths.
func PublicPaths() []string {
	return []string{
		"/swagger-ui.html",
		"/livez",
		"/readyz",
	}
}

// docPrefixes are exempt from identity-header stamping.
func docPrefixes() []string {
	return []string{"/swagger-ui", "/v3/api-docs"}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	AuthTarget     *url.URL
	EmployeeTarget *url.URL
	Login          *LoginHandler
}

// NewRouter assembles the gateway filter chain. The token relay runs first
// so every later stage, the proxy included, sees a bearer header; the
// resource-server chain authenticates before the identity headers are
// stamped for upstream services.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	allowedOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.TokenRelay(),
		httpx.CORS(allowedOrigins),
		httpx.ResourceServer(httpx.ResourceServerConfig{
			Verifier:       verifier,
			Routes:         Routes(),
			PublicPrefixes: PublicPrefixes(),
			PublicPaths:    PublicPaths(),
		}),
		httpx.ClaimsPropagation(docPrefixes()),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerProxies()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	r.Mux.HandleFunc("GET /oauth2/authorization", r.Login.HandleAuthorize)
	r.Mux.HandleFunc("GET /login/oauth2/code/callback", r.Login.HandleCallback)
}

func (r *Router) registerProxies() {
	r.Mux.Handle("/auth/", newProxy(r.AuthTarget, r.logger))

	employees := newProxy(r.EmployeeTarget, r.logger)
	r.Mux.Handle("/api/v1/employees", employees)
	r.Mux.Handle("/api/v1/employees/", employees)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", httpx.LivezHandler(r.startTime, r.buildVersion))
	// The gateway holds no local state; readiness equals liveness.
	r.Mux.Handle("GET /readyz", httpx.LivezHandler(r.startTime, r.buildVersion))
}
