package httpx

import (
	"net/http"
	"time"
)

// HealthChecks reports per-dependency readiness. Fields are omitted when
// the service has no such dependency.
type HealthChecks struct {
	Database         string `json:"database,omitempty"`
	IdentityProvider string `json:"identity_provider,omitempty"`
}

// HealthResponse is the body of the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// LivezHandler returns a liveness probe that answers 200 whenever the
// process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
