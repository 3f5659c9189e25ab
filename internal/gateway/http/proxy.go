package http

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/renzoproject/workforce/pkg/httpx"
)

// newProxy forwards requests to an upstream service unchanged; by the time
// a request reaches it the filter chain has already relayed the cookie into
// a bearer header and stamped the identity headers.
func newProxy(target *url.URL, logger *slog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream unreachable",
			"upstream", target.Host,
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return proxy
}
