// Package cache is an in-memory TTL cache with read-through loading and
// pattern invalidation.
//
// A Cache is an explicit object: construct one per process (or per test)
// and hand it to the components that read through it.
//
// Concurrent misses for one key share a single compute call. Every
// invalidation advances an epoch; a compute that started before it may
// still answer its own callers but its result is never stored, and callers
// arriving after the invalidation start a fresh compute. Once Invalidate,
// InvalidatePattern or Clear returns, no GetOrCompute can observe the old
// value.
package cache

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	items map[string]item
	epoch uint64

	group singleflight.Group
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{items: make(map[string]item), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) lookupLocked(key string) (any, bool) {
	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(it.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return it.value, true
}

// storeAt stores value unless an invalidation happened since epoch.
func (c *Cache) storeAt(key string, value any, ttl time.Duration, epoch uint64) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	now := c.now()
	c.items[key] = item{value: value, storedAt: now, expiresAt: now.Add(ttl)}
}

// GetOrCompute returns the live value under key, or calls compute, stores
// its result for ttl and returns it. A failed compute stores nothing and
// its error is returned as is. Callers sharing a compute share its context.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	v, ok := c.lookupLocked(key)
	epoch := c.epoch
	c.mu.Unlock()
	if ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	flight := key + "\x00" + strconv.FormatUint(epoch, 10)

	shared, err, _ := c.group.Do(flight, func() (any, error) {
		out, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.storeAt(key, out, ttl, epoch)
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := shared.(T)
	return t, nil
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.epoch++
}

// InvalidatePattern drops every key matching re and returns how many were
// removed.
func (c *Cache) InvalidatePattern(re *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.items {
		if re.MatchString(k) {
			delete(c.items, k)
			n++
		}
	}
	c.epoch++
	return n
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
	c.epoch++
}
