package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/renzoproject/workforce/internal/auth/service"
	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// SessionHandler serves the cookie-based session lifecycle. Tokens travel
// to the browser only as HttpOnly cookies; response bodies never carry
// them.
type SessionHandler struct {
	AuthService *service.AuthService
	Cookies     cookiex.Policy
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin exchanges credentials for a session. Cookies are set only
// after the provider accepted the grant.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tok, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// A hung or failing provider is still a failed login to the
		// browser: the grant did not succeed, so the status is the same
		// uniform 401 a bad password gets.
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(r.Context()).Error("login failed", "err", err)
		}
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.NoCache(w)
	http.SetCookie(w, h.Cookies.Access(tok.AccessToken))
	http.SetCookie(w, h.Cookies.Refresh(tok.RefreshToken))
	w.WriteHeader(http.StatusOK)
}

// HandleRefresh reissues the access cookie from the refresh cookie. The
// refresh cookie itself is left untouched; an absent cookie is a 401
// without any provider round trip.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := cookiex.RefreshToken(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	tok, err := h.AuthService.Refresh(r.Context(), refreshToken)
	if err != nil {
		// Provider outages and timeouts map to the same 401 as a rejected
		// token; the access cookie is simply not reissued.
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(r.Context()).Error("refresh failed", "err", err)
		}
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.NoCache(w)
	http.SetCookie(w, h.Cookies.Access(tok.AccessToken))
	w.WriteHeader(http.StatusOK)
}

// HandleLogout clears both session cookies unconditionally and revokes the
// provider session on a best-effort basis. Logging out an already-dead
// session is still a 200.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := cookiex.RefreshToken(r); ok {
		h.AuthService.Logout(r.Context(), refreshToken)
	}

	httpx.NoCache(w)
	http.SetCookie(w, h.Cookies.Expired(cookiex.AccessTokenCookie))
	http.SetCookie(w, h.Cookies.Expired(cookiex.RefreshTokenCookie))
	w.WriteHeader(http.StatusOK)
}

// HandleSession confirms the caller holds a valid session. Reaching this
// handler means the resource-server chain already accepted the token.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// HandleRegister orchestrates account creation across the identity
// provider and the employee service.
func (h *SessionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailExists):
			httpx.WriteError(w, http.StatusConflict, "email already exists")
		case errors.Is(err, service.ErrEmployeeRecord):
			slogx.FromContext(r.Context()).Error("registration incomplete", "err", err)
			httpx.WriteError(w, http.StatusBadGateway, "failed to create employee record")
		default:
			slogx.FromContext(r.Context()).Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
