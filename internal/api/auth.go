package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/windfleet/windfleet/internal/config"
)

// Middleware returns an http.Handler enforcing API key authentication on
// /api/v1/* routes.
//
// Behaviour:
//   - If mode != "apikey" or the resolved key is empty, all requests pass
//     through (useful for local development with auth disabled).
//   - Otherwise the request must carry the configured header with the exact
//     key; anything else gets 401.
//   - /metrics is always exempt so Prometheus can scrape without a key.
func Middleware(cfg config.AuthConfig, next http.Handler) http.Handler {
	key := cfg.Key()
	if cfg.Mode != "apikey" || key == "" {
		return next
	}
	header := cfg.EffectiveHeader()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get(header)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			jsonErr(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
