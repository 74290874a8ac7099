// components/health/health.go
//
// Liveness and readiness check.  GET /health pings the database and answers
// 200 {"status":"ok"} or 503 {"status":"unavailable"}.  The route is
// unauthenticated and never logs the ping error at more than WARN.
//
//------------------------------------------------------------------------------

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/formdesk/internal/component"
	"github.com/yanizio/formdesk/internal/logger"
)

const pingTimeout = 2 * time.Second

var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component serves /health.
type Component struct {
	db component.Pinger
}

// New returns a Component checking db.
func New(db component.Pinger) *Component { return &Component{db: db} }

func (c *Component) Name() string { return "health" }

func (c *Component) Init(deps component.Deps) error {
	c.db = deps.Pinger()
	if c.db == nil {
		return errors.New("health: no database pinger")
	}
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/health", c.handleHealth)
}

func init() { component.Register(&Component{}) }

func (c *Component) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status, body := http.StatusOK, "ok"
	if err := c.db.Ping(ctx); err != nil {
		logger.FromContext(r.Context()).Warnw("health ping failed", "err", err)
		status, body = http.StatusServiceUnavailable, "unavailable"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": body})
}
