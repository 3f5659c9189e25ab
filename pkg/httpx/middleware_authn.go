package httpx

import (
	"net/http"
	"strings"

	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// ResourceServerConfig drives the per-service authentication and
// authorization chain. The gateway and every service behind it run their
// own instance against the same identity provider, so a forged or expired
// token is rejected at whichever hop it reaches first.
type ResourceServerConfig struct {
	// Verifier validates bearer tokens against the provider's key set.
	Verifier jwtx.Verifier

	// Routes is the authorization table consulted after authentication.
	Routes RouteTable

	// PublicPrefixes are path prefixes that bypass the chain entirely
	// (documentation, health, the session lifecycle endpoints). Checked
	// before token validation so public routes never demand a token.
	PublicPrefixes []string

	// PublicPaths are exact-match public paths.
	PublicPaths []string
}

// ResourceServer enforces the bearer-token contract: allow-list check,
// token validation (signature, issuer, expiry), then the route
// authorization table. Authentication failures yield a uniform 401 JSON
// body; authorization failures yield 403.
func ResourceServer(cfg ResourceServerConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			// CORS preflights and allow-listed paths skip the chain.
			if r.Method == http.MethodOptions || cfg.isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				WriteUnauthorized(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := cfg.Verifier.Verify(ctx, raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				WriteUnauthorized(w)
				return
			}

			roles := claims.Roles()
			if required, ok := cfg.Routes.Match(r.Method, r.URL.Path); ok {
				if !HasAuthority(required, roles) {
					log.Warn("insufficient authority",
						"required", required,
						"sub", claims.Subject,
					)
					WriteForbidden(w)
					return
				}
			}
			// No rule matched: any authenticated principal is sufficient.

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, claims)))
		})
	}
}

func (cfg ResourceServerConfig) isPublic(path string) bool {
	for _, p := range cfg.PublicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
