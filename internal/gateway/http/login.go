package http

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/slogx"
	"golang.org/x/oauth2"
)

// stateCookieName holds the OIDC state nonce between the authorize redirect
// and the provider callback.
const stateCookieName = "OAUTH_STATE"

// LoginHandler drives the browser OIDC flow: redirect to the provider's
// authorize endpoint, then exchange the callback code and convert the token
// pair into session cookies. Tokens never appear in a response body or log.
type LoginHandler struct {
	OAuth       *oauth2.Config
	Cookies     cookiex.Policy
	FrontendURL string
}

// HandleAuthorize starts the flow: mint a state nonce, stash it in a
// short-lived cookie, and send the browser to the provider.
func (h *LoginHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		slogx.FromContext(r.Context()).Error("state generation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		// The provider redirects back cross-site, so Strict would drop the
		// cookie on the callback.
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback finishes the flow. The state must round-trip, and the code
// exchange must yield an access token; otherwise no cookie is set and no
// redirect happens.
func (h *LoginHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httpx.WriteUnauthorized(w)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	tok, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		log.Error("code exchange failed", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}
	if tok.AccessToken == "" {
		log.Error("code exchange returned no access token")
		httpx.WriteError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	// State is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, h.Cookies.Access(tok.AccessToken))
	if tok.RefreshToken != "" {
		http.SetCookie(w, h.Cookies.Refresh(tok.RefreshToken))
	}
	http.Redirect(w, r, h.FrontendURL, http.StatusFound)
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
