// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web blank-imports the
// components it ships, calls InitAll once the shared resources exist, and
// lets every component add its routes to the root router.  chi allows only
// one Mount per pattern, so components register on the shared router
// instead of returning sub-routers.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is optional.  If a Component implements it, InitAll calls
// Init(deps) once at startup, before Routes.
type Initializer interface {
	Init(Deps) error
}

// Component contract.  Routes adds handlers to the root router using full
// paths, e.g.
//
//	func (c *Component) Routes(r chi.Router) {
//		r.Route("/form", func(r chi.Router) { ... })
//	}
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering the
// same name twice is a programming error.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("component: %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component sorted by name, so mount order is
// stable across runs.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// InitAll runs Init on every registered Initializer and stops at the first
// failure.
func InitAll(deps Deps) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(deps); err != nil {
				return fmt.Errorf("init component %s: %w", c.Name(), err)
			}
		}
	}
	return nil
}

// Mount lets every component add its routes to r.
func Mount(r chi.Router) {
	for _, c := range All() {
		c.Routes(r)
	}
}
