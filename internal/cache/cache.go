// Package cache provides a small in-process TTL cache with LRU eviction,
// used to memoize rendered fragments and aggregate queries.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[T any] struct {
	key     string
	value   T
	expires time.Time
}

// TTLCache is a bounded cache where entries expire after a fixed TTL and
// the least recently used entry is evicted once capacity is reached.
// A zero TTL means entries never expire and only capacity bounds the cache.
type TTLCache[T any] struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	index   map[string]*list.Element
	order   *list.List
	stop    chan struct{}
	stopped sync.Once
}

// New creates a TTLCache holding at most cap entries, each valid for ttl.
func New[T any](cap int, ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		cap:   cap,
		ttl:   ttl,
		index: make(map[string]*list.Element),
		order: list.New(),
		stop:  make(chan struct{}),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])
	if c.expired(e, time.Now()) {
		c.evict(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key, refreshing its TTL and recency.
func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expires: time.Now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(e)
	if c.order.Len() > c.cap {
		if back := c.order.Back(); back != nil {
			c.evict(back)
		}
	}
}

// Invalidate removes key from the cache.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.evict(el)
	}
}

// InvalidateAll drops every entry. Used after mutations so readers never
// see stale aggregates.
func (c *TTLCache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of entries currently held, including any that
// have expired but not yet been swept.
func (c *TTLCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Sweep removes expired entries and reports how many were dropped.
func (c *TTLCache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	dropped := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry[T]), now) {
			c.evict(el)
			dropped++
		}
		el = prev
	}
	return dropped
}

// StartJanitor launches a goroutine that sweeps expired entries every
// interval until Close is called.
func (c *TTLCache[T]) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Close stops the janitor goroutine. Safe to call more than once.
func (c *TTLCache[T]) Close() {
	c.stopped.Do(func() { close(c.stop) })
}

func (c *TTLCache[T]) expired(e *entry[T], now time.Time) bool {
	return c.ttl > 0 && now.After(e.expires)
}

func (c *TTLCache[T]) evict(el *list.Element) {
	e := el.Value.(*entry[T])
	delete(c.index, e.key)
	c.order.Remove(el)
}
