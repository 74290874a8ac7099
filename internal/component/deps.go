// internal/component/deps.go
package component

import (
	"context"

	"github.com/yanizio/formdesk/internal/form"
)

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps exposes process-wide resources to Components during Init.
type Deps interface {
	Forms() *form.Service
	Pinger() Pinger
}
