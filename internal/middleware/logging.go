// internal/middleware/logging.go
//
// Request logger and HTTP metrics.
//
// Context
// -------
// RequestLog derives a request-scoped zap logger (request id, method, path,
// and device class from internal/requestinfo), stores it in the context for
// logger.FromContext, and writes one access line per request.  The same
// pass feeds the http_requests_total counter and latency histogram, labelled
// by chi route pattern so path ids do not explode cardinality.
//
// Place after chi's RequestID and requestinfo.Enrich.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/formdesk/internal/logger"
	"github.com/yanizio/formdesk/internal/metrics"
	"github.com/yanizio/formdesk/internal/requestinfo"
)

// RequestLog returns the access-log middleware writing through base.
func RequestLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			device := requestinfo.Device(r.Context())

			l := base.With(
				"req_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"device", device,
			)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithLogger(r.Context(), l)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := routePattern(r)
			metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, statusClass(status), device).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

			fields := []any{"status", status, "bytes", ww.BytesWritten(), "dur_ms", elapsed.Milliseconds()}
			switch {
			case status >= 500:
				l.Errorw("request", fields...)
			case status >= 400:
				l.Warnw("request", fields...)
			default:
				l.Infow("request", fields...)
			}
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusClass(code int) string { return strconv.Itoa(code/100) + "xx" }
