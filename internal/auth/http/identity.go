package http

import (
	"net/http"
	"strings"

	"github.com/renzoproject/workforce/internal/auth/service"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// IdentityHandler serves claims-derived identity endpoints and role
// lookups against the provider's admin API.
type IdentityHandler struct {
	AuthService *service.AuthService
}

// AccountDetails is the profile projection of the verified token claims.
type AccountDetails struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	FullName  string `json:"fullName,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// HandleUserInfo returns the caller's profile, derived purely from the
// verified token. No provider round trip.
func (h *IdentityHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, AccountDetails{
		UserID:    claims.Subject,
		Username:  claims.PreferredUsername,
		FullName:  claims.Name,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Email:     claims.Email,
	})
}

// HandleToken echoes the caller's raw bearer token, for tools that need to
// lift a cookie session into an Authorization header.
func (h *IdentityHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
	if raw == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(raw))
}

// HandleMyRoles returns the realm roles of the caller, looked up live at
// the provider rather than read from the token, so freshly assigned roles
// show up before re-login.
func (h *IdentityHandler) HandleMyRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}
	h.writeRoles(w, r, userID)
}

// HandleUserRoles returns the realm roles of an arbitrary user. The route
// table restricts it to ADMIN callers.
func (h *IdentityHandler) HandleUserRoles(w http.ResponseWriter, r *http.Request) {
	h.writeRoles(w, r, r.PathValue("userId"))
}

func (h *IdentityHandler) writeRoles(w http.ResponseWriter, r *http.Request, userID string) {
	roles, err := h.AuthService.UserRoles(r.Context(), userID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("role lookup failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, roles)
}
