// Package cache provides a small in-memory TTL cache. Instances are owned by
// whoever constructs them; there is no package-level cache.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL maps keys to values that expire a fixed duration after they were set.
// Reads do not extend the lifetime. A zero TTL disables caching.
// Each entry carries a deadline from the configured clock on top of the
// store's wall-clock TTL; either one expires it.
type TTL[V any] struct {
	ttl   time.Duration
	items *ttlcache.Cache[string, entry[V]]

	mu  sync.RWMutex
	now func() time.Time

	// Lookups the store counted as hits but the clock had already expired.
	stale atomic.Uint64
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl: ttl,
		items: ttlcache.New[string, entry[V]](
			ttlcache.WithTTL[string, entry[V]](ttl),
			ttlcache.WithDisableTouchOnHit[string, entry[V]](),
		),
		now: time.Now,
	}
}

// WithClock swaps the time source. Tests use it to advance time.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *TTL[V]) clock() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now()
}

func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	item := c.items.Get(key)
	if item == nil {
		return zero, false
	}
	e := item.Value()
	if !c.clock().Before(e.expiresAt) {
		c.items.Delete(key)
		c.stale.Add(1)
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.items.Set(key, entry[V]{value: value, expiresAt: c.clock().Add(c.ttl)}, ttlcache.DefaultTTL)
}

// Purge drops expired entries and returns how many were removed.
func (c *TTL[V]) Purge() int {
	before := c.items.Metrics().Evictions
	c.items.DeleteExpired()
	removed := int(c.items.Metrics().Evictions - before)

	now := c.clock()
	var expired []string
	c.items.Range(func(item *ttlcache.Item[string, entry[V]]) bool {
		if !now.Before(item.Value().expiresAt) {
			expired = append(expired, item.Key())
		}
		return true
	})
	for _, k := range expired {
		c.items.Delete(k)
	}
	return removed + len(expired)
}

func (c *TTL[V]) Clear() {
	c.items.DeleteAll()
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Entries    int    `json:"entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Insertions uint64 `json:"insertions"`
	Evictions  uint64 `json:"evictions"`
}

func (c *TTL[V]) Stats() Stats {
	m := c.items.Metrics()
	stale := c.stale.Load()
	return Stats{
		Entries:    c.items.Len(),
		Hits:       m.Hits - stale,
		Misses:     m.Misses + stale,
		Insertions: m.Insertions,
		Evictions:  m.Evictions,
	}
}
