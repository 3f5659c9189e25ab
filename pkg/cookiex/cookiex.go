// Package cookiex holds the session cookie policy shared by the gateway and
// the auth service. A browser session is exactly two HttpOnly cookies: the
// relayed access token and, optionally, the refresh token.
package cookiex

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessTokenCookie  = "ACCESS_TOKEN"
	RefreshTokenCookie = "REFRESH_TOKEN"

	// Cookie lifetimes track the provider's token TTLs: short for access,
	// long for refresh.
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Policy fixes the deployment-wide cookie attributes. Secure and SameSite
// are configuration, never per-request decisions. The zero value is the
// most conservative variant; relaxing it (e.g. for plain-HTTP dev setups)
// is an explicit config choice.
type Policy struct {
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultPolicy returns the production policy: Secure, SameSite=Strict.
func DefaultPolicy() Policy {
	return Policy{
		Secure:     true,
		SameSite:   http.SameSiteStrictMode,
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}
}

// ParseSameSite maps a config string onto http.SameSite, defaulting to
// Strict for anything unrecognised.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// Access builds the access-token cookie.
func (p Policy) Access(token string) *http.Cookie {
	return p.build(AccessTokenCookie, token, p.ttl(p.AccessTTL, DefaultAccessTTL))
}

// Refresh builds the refresh-token cookie.
func (p Policy) Refresh(token string) *http.Cookie {
	return p.build(RefreshTokenCookie, token, p.ttl(p.RefreshTTL, DefaultRefreshTTL))
}

// Expired builds an overwrite-to-expire cookie for the given name.
func (p Policy) Expired(name string) *http.Cookie {
	c := p.build(name, "", 0)
	c.MaxAge = -1
	return c
}

func (p Policy) build(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	}
}

func (p Policy) sameSite() http.SameSite {
	if p.SameSite == 0 {
		return http.SameSiteStrictMode
	}
	return p.SameSite
}

func (Policy) ttl(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}

// AccessToken extracts the access-token cookie value from a request. A
// missing or empty cookie reports ok=false; callers treat that as "no
// session" rather than an error.
func AccessToken(r *http.Request) (string, bool) {
	return cookieValue(r, AccessTokenCookie)
}

// RefreshToken extracts the refresh-token cookie value from a request.
func RefreshToken(r *http.Request) (string, bool) {
	return cookieValue(r, RefreshTokenCookie)
}

func cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
