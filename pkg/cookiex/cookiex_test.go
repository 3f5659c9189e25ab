package cookiex

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessCookieAttributes(t *testing.T) {
	t.Parallel()

	c := DefaultPolicy().Access("tok-abc")

	require.Equal(t, AccessTokenCookie, c.Name)
	require.Equal(t, "tok-abc", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, int((15 * time.Minute).Seconds()), c.MaxAge)
}

func TestRefreshCookieAttributes(t *testing.T) {
	t.Parallel()

	c := DefaultPolicy().Refresh("tok-ref")

	require.Equal(t, RefreshTokenCookie, c.Name)
	require.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
	require.True(t, c.HttpOnly)
}

func TestExpiredCookieSerialisesMaxAgeZero(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	http.SetCookie(w, DefaultPolicy().Expired(AccessTokenCookie))

	header := w.Header().Get("Set-Cookie")
	require.True(t, strings.HasPrefix(header, AccessTokenCookie+"="))
	require.Contains(t, header, "Max-Age=0")
	require.Contains(t, header, "HttpOnly")
}

func TestPolicyOverridesTTL(t *testing.T) {
	t.Parallel()

	p := Policy{AccessTTL: time.Minute, RefreshTTL: time.Hour}
	require.Equal(t, 60, p.Access("a").MaxAge)
	require.Equal(t, 3600, p.Refresh("r").MaxAge)
}

func TestParseSameSite(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.SameSiteLaxMode, ParseSameSite("Lax"))
	require.Equal(t, http.SameSiteNoneMode, ParseSameSite("none"))
	require.Equal(t, http.SameSiteStrictMode, ParseSameSite("Strict"))
	require.Equal(t, http.SameSiteStrictMode, ParseSameSite("bogus"), "unknown values fall back to the strict default")
}

func TestCookieExtraction(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "A"})

	got, ok := AccessToken(r)
	require.True(t, ok)
	require.Equal(t, "A", got)

	_, ok = RefreshToken(r)
	require.False(t, ok)
}
