package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/stretchr/testify/require"
)

func relayThrough(r *http.Request) *http.Request {
	var seen *http.Request
	h := TokenRelay()(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		seen = req
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
	return seen
}

func TestTokenRelayRewritesCookieToBearer(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	r.AddCookie(&http.Cookie{Name: cookiex.AccessTokenCookie, Value: "tok-123"})

	got := relayThrough(r)
	require.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
}

func TestTokenRelayOverwritesExistingHeaderWhenCookiePresent(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer stale")
	r.AddCookie(&http.Cookie{Name: cookiex.AccessTokenCookie, Value: "fresh"})

	got := relayThrough(r)
	require.Equal(t, "Bearer fresh", got.Header.Get("Authorization"))
}

func TestTokenRelayLeavesRequestAloneWithoutCookie(t *testing.T) {
	t.Parallel()

	t.Run("no header, no cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		got := relayThrough(r)
		require.Empty(t, got.Header.Get("Authorization"))
	})

	t.Run("pre-existing header untouched", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer direct-client")
		got := relayThrough(r)
		require.Equal(t, "Bearer direct-client", got.Header.Get("Authorization"))
	})

	t.Run("empty cookie value treated as absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", cookiex.AccessTokenCookie+"=")
		got := relayThrough(r)
		require.Empty(t, got.Header.Get("Authorization"))
	})
}
