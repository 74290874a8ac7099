// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - forms idle longer than idleTTL
//   - least-recently-used forms when map size exceeds maxEntries
//
// Each eviction updates Prometheus counters; a summary is logged per sweep.
package formcache

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/formdesk/internal/form"
	"github.com/yanizio/formdesk/internal/metrics"
)

func (c *Cache) evictLoop() {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if idle, lru := c.sweep(); idle+lru > 0 {
				zap.S().Debugw("form cache sweep", "idle", idle, "lru", lru, "size", c.Len())
			}
		}
	}
}

// sweep runs one idle pass and one LRU pass and reports how many entries
// each removed.
func (c *Cache) sweep() (idle, lru int) {
	now := c.now().UnixNano()

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		if time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) > c.idleTTL {
			if c.m.CompareAndDelete(key, value) {
				c.evicted()
				idle++
			}
		}
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if over := c.Len() - c.maxEntries; c.maxEntries > 0 && over > 0 {
		type kv struct {
			key form.ID
			at  int64
			ent *entry
		}
		var all []kv
		c.m.Range(func(key, value any) bool {
			ent := value.(*entry)
			all = append(all, kv{key: key.(form.ID), at: atomic.LoadInt64(&ent.lastSeen), ent: ent})
			return true
		})
		sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
		for i := 0; i < over && i < len(all); i++ {
			if c.m.CompareAndDelete(all[i].key, all[i].ent) {
				c.evicted()
				lru++
			}
		}
	}
	return idle, lru
}

func (c *Cache) evicted() {
	c.size.Add(-1)
	metrics.FormEvictTotal.Inc()
	metrics.CachedForms.Dec()
}
