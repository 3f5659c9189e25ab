package httpx

import (
	"net/http"
	"strings"
)

// Forwarded identity headers set by the gateway for downstream services.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserRoles = "X-User-Roles"
)

// ClaimsPropagation re-serialises the verified principal into forwarded
// headers so downstream services can attribute writes without re-parsing
// the token. Role order is preserved from the claim. Requests under the
// documentation prefixes, and requests without a principal, are forwarded
// unmodified — this filter enriches, it never rejects.
func ClaimsPropagation(docPrefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range docPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			r.Header.Set(HeaderUserID, claims.Subject)
			r.Header.Set(HeaderUserRoles, strings.Join(claims.Roles(), ","))
			next.ServeHTTP(w, r)
		})
	}
}
