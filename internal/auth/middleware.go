// internal/auth/middleware.go
//
// Identify attaches the bearer identity to the request context.
//
// Anonymous requests pass through untouched; the form service refuses them
// with 403.  A token that is present but fails verification is rejected
// here with 401 so clients can tell "log in again" from "not allowed".

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yanizio/formdesk/internal/logger"
)

// Identify returns middleware backed by v.
func Identify(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.Verify(raw)
			if err != nil {
				logger.FromContext(r.Context()).Infow("bearer rejected", "err", err)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid or expired token."})
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With("user", id.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
