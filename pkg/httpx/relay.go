package httpx

import (
	"net/http"

	"github.com/renzoproject/workforce/pkg/cookiex"
)

// TokenRelay rewrites the browser's ACCESS_TOKEN cookie into a bearer
// Authorization header before any routing or authorization decision runs.
// It must be the outermost middleware at the gateway: everything after it,
// including CORS preflight handling and the resource-server chain, sees the
// request in header form.
//
// A request without the cookie passes through untouched; in particular a
// pre-existing Authorization header is preserved. A malformed cookie is
// indistinguishable from an absent one. This filter mutates only the
// request and cannot fail.
func TokenRelay() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := cookiex.AccessToken(r); ok {
				r.Header.Set("Authorization", "Bearer "+token)
			}
			next.ServeHTTP(w, r)
		})
	}
}
