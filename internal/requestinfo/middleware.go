// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
Enrich runs after chi's RequestID and RealIP and before RequestLog, so the
access log and the HTTP metrics can label every request with a device
class.  Per request it parses the User-Agent (memoised in the package LRU),
takes the primary Accept-Language tag, resolves the client IP, and looks it
up in GeoLite2 when a database was opened with InitGeo.

Notes
-----
  • Read-only look-ups; safe under concurrency.
  • RealIP has usually rewritten RemoteAddr already; the header walk in
    clientIP covers deployments that skip it.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(clientIP(r)),
			Timestamp: time.Now().UTC(),
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
