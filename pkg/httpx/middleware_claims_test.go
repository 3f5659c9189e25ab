package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimsPropagationSetsForwardedHeaders(t *testing.T) {
	t.Parallel()

	var seen http.Header
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	})

	h := ClaimsPropagation(nil)(next)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	r = r.WithContext(ContextWithPrincipal(r.Context(), principalClaims("user-1", "ADMIN", "VIEWER")))
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, "user-1", seen.Get(HeaderUserID))
	require.Equal(t, "ADMIN,VIEWER", seen.Get(HeaderUserRoles), "role order preserved from the claim")
}

func TestClaimsPropagationWithoutPrincipalForwardsUnmodified(t *testing.T) {
	t.Parallel()

	var seen http.Header
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	})

	h := ClaimsPropagation(nil)(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Empty(t, seen.Get(HeaderUserID))
	require.Empty(t, seen.Get(HeaderUserRoles))
}

func TestClaimsPropagationSkipsDocumentationPaths(t *testing.T) {
	t.Parallel()

	var seen http.Header
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	})

	h := ClaimsPropagation([]string{"/v3/api-docs", "/swagger-ui"})(next)

	r := httptest.NewRequest(http.MethodGet, "/swagger-ui/index.html", nil)
	r = r.WithContext(ContextWithPrincipal(r.Context(), principalClaims("user-1", "ADMIN")))
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.Empty(t, seen.Get(HeaderUserID))
}
