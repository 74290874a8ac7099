// internal/middleware/cors.go
//
// CORS for the browser-hosted builder, built on go-chi/cors.  Only origins
// listed in http.allowed_origins are echoed back; "*" allows any origin but
// never with credentials.  Pre-flight requests are answered here and never
// reach the router, so they do not need a bearer token.
//
// An empty list disables CORS entirely.  go-chi/cors would read it as
// "allow everyone", which is not what an unset config key should mean.

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS returns middleware permitting the given origins.
func CORS(allowed []string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	origins := make([]string, len(allowed))
	for i, o := range allowed {
		origins[i] = normalizeOrigin(o)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})
}

// normalizeOrigin trims a trailing slash so config values copied from the
// address bar still match the Origin header.
func normalizeOrigin(o string) string { return strings.TrimSuffix(o, "/") }
