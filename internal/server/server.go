// internal/server/server.go
//
// HTTP server helper with robust timeouts and graceful shutdown.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers and bodies
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// This helper centralises those defaults so cmd/web doesn't repeat
// boilerplate.  Run blocks until ctx is cancelled (SIGINT/SIGTERM in main)
// and then drains in-flight requests for at most Timeouts.Shutdown.
//

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Timeouts groups the server deadlines.  Zero fields take the defaults.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Read == 0 {
		t.Read = 10 * time.Second
	}
	if t.Write == 0 {
		t.Write = 15 * time.Second
	}
	if t.Idle == 0 {
		t.Idle = 60 * time.Second
	}
	if t.Shutdown == 0 {
		t.Shutdown = 10 * time.Second
	}
	return t
}

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	t = t.withDefaults()
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.Read,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
		// TLSConfig may be injected by callers.
	}
}

// Run serves srv until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, shutdown time.Duration, log *zap.SugaredLogger) error {
	if shutdown == 0 {
		shutdown = Timeouts{}.withDefaults().Shutdown
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listener online", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	log.Infow("shutting down", "grace", shutdown)
	sctx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
