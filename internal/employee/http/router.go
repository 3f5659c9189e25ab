// Package http wires the employee service's HTTP surface: CRUD handlers,
// health probes, and the resource-server middleware chain.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/renzoproject/workforce/internal/employee/service"
	"github.com/renzoproject/workforce/internal/employee/store"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// Routes is the employee authorization table. The same table runs at the
// gateway; enforcing it here as well keeps the service safe when called
// directly.
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

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	EmployeeService *service.EmployeeService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ResourceServer(httpx.ResourceServerConfig{
			Verifier:    verifier,
			Routes:      Routes(),
			PublicPaths: []string{"/livez", "/readyz"},
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerEmployees()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerEmployees() {
	h := &EmployeeHandler{EmployeeService: r.EmployeeService}

	r.Mux.HandleFunc("POST /api/v1/employees", h.HandleCreate)
	r.Mux.HandleFunc("GET /api/v1/employees", h.HandleList)
	r.Mux.HandleFunc("GET /api/v1/employees/sorted", h.HandleListSorted)
	r.Mux.HandleFunc("GET /api/v1/employees/search", h.HandleSearch)
	r.Mux.HandleFunc("GET /api/v1/employees/job-title", h.HandleByJobTitle)
	r.Mux.HandleFunc("GET /api/v1/employees/{employeeId}", h.HandleGet)
	r.Mux.HandleFunc("PUT /api/v1/employees/{employeeId}", h.HandleUpdate)
	r.Mux.HandleFunc("PATCH /api/v1/employees/{employeeId}/address", h.HandlePatchAddress)
	r.Mux.HandleFunc("PATCH /api/v1/employees/{employeeId}/contact", h.HandlePatchContact)
	r.Mux.HandleFunc("PATCH /api/v1/employees/{employeeId}/emergency-contact", h.HandlePatchEmergencyContact)
	r.Mux.HandleFunc("DELETE /api/v1/employees/{employeeId}", h.HandleDelete)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", httpx.LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
