// internal/formcache/cache.go
//
// Read-through cache of form definitions.
//
// Context
// -------
// Every response submission re-reads its form to validate answers against
// the stored field list.  Popular forms are answered far more often than
// they are edited, so Cache keeps recently used definitions in a sync.Map,
// collapses concurrent misses with singleflight, and evicts entries on idle
// TTL or LRU pressure (see evictor.go).
//
// Notes
// -----
//   - Cached *form.Form values are shared; callers must treat them as
//     read-only.
//   - The form service calls Invalidate after every edit and delete.
//   - Misses (form.ErrNotFound) are never cached.
//   - A load that overlaps an Invalidate is returned to its callers but not
//     stored; epoch guards the store so an edit can never be shadowed by the
//     row read before it.
package formcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/formdesk/internal/form"
	"github.com/yanizio/formdesk/internal/metrics"
)

// Defaults used when Options leaves a field zero.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 1000
	EvictInterval = 5 * time.Minute
)

// Loader is the slice of form.Store the cache reads through.
type Loader interface {
	GetForm(ctx context.Context, id form.ID) (*form.Form, error)
}

// Options tunes a Cache.
type Options struct {
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration
}

type entry struct {
	form     *form.Form
	lastSeen int64 // UnixNano
}

// Cache lazily loads forms, stores them in a sync.Map, and evicts them on
// idle TTL or LRU pressure.
type Cache struct {
	loader     Loader
	sfg        singleflight.Group
	m          sync.Map // form.ID → *entry
	size       atomic.Int64
	idleTTL    time.Duration
	maxEntries int
	interval   time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once

	mu    sync.Mutex // orders stores against Invalidate
	epoch uint64     // bumped by every Invalidate
}

// New constructs a Cache and starts the background evictor.  Call Close to
// stop it.
func New(loader Loader, o Options) *Cache {
	c := newCache(loader, o)
	go c.evictLoop()
	return c
}

func newCache(loader Loader, o Options) *Cache {
	if o.IdleTTL == 0 {
		o.IdleTTL = IdleTTL
	}
	if o.MaxEntries == 0 {
		o.MaxEntries = MaxEntries
	}
	if o.EvictInterval == 0 {
		o.EvictInterval = EvictInterval
	}
	return &Cache{
		loader:     loader,
		idleTTL:    o.IdleTTL,
		maxEntries: o.MaxEntries,
		interval:   o.EvictInterval,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

// Get returns the form for id, loading it on demand.
func (c *Cache) Get(ctx context.Context, id form.ID) (*form.Form, error) {
	if f, ok := c.touch(id); ok {
		return f, nil
	}

	v, err, _ := c.sfg.Do(id.String(), func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if f, ok := c.touch(id); ok {
			return f, nil
		}
		c.mu.Lock()
		start := c.epoch
		c.mu.Unlock()

		// Detach from the first caller's cancellation; other waiters share
		// this load.
		f, err := c.loader.GetForm(context.WithoutCancel(ctx), id)
		if err != nil {
			if !errors.Is(err, form.ErrNotFound) {
				metrics.FormLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		metrics.FormLoadTotal.Inc()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != start {
			return f, nil
		}
		if _, loaded := c.m.Swap(id, &entry{form: f, lastSeen: c.now().UnixNano()}); !loaded {
			c.size.Add(1)
			metrics.CachedForms.Inc()
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*form.Form), nil
}

// Invalidate drops id so the next Get reloads it.
func (c *Cache) Invalidate(id form.ID) {
	c.mu.Lock()
	c.epoch++
	_, loaded := c.m.LoadAndDelete(id)
	c.mu.Unlock()

	// Later Gets must start a fresh load, not join one already in flight.
	c.sfg.Forget(id.String())
	if loaded {
		c.size.Add(-1)
		metrics.CachedForms.Dec()
	}
}

// Len reports the number of cached forms.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Close stops the evictor.  Safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) touch(id form.ID) (*form.Form, bool) {
	v, ok := c.m.Load(id)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	atomic.StoreInt64(&ent.lastSeen, c.now().UnixNano())
	return ent.form, true
}
