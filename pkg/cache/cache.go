package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config configures a Cache
type Config struct {
	// MaxSize bounds the number of entries; the least recently used entry is
	// evicted first.
	MaxSize int

	// TTL is applied by Set. Zero disables expiry.
	TTL time.Duration

	// CleanupInterval controls the background sweep of expired entries.
	// Zero disables the sweep; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	element   *list.Element
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a thread-safe LRU cache with TTL support
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	maxSize   int
	ttl       time.Duration
	items     map[K]*entry[K, V]
	lru       *list.List
	onEvict   func(K, V)
	now       func() time.Time
	hits      int64
	misses    int64
	evictions int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Option customizes a Cache
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnEvict registers a callback invoked for every entry leaving the cache,
// whether by expiry, capacity or Delete. It runs outside the cache lock.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// WithClock overrides the time source
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// New creates a new LRU cache with TTL support
func New[K comparable, V any](cfg Config, opts ...Option[K, V]) *Cache[K, V] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1024
	}

	c := &Cache[K, V]{
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		items:   make(map[K]*entry[K, V]),
		lru:     list.New(),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.CleanupInterval > 0 {
		go c.cleanupLoop(cfg.CleanupInterval)
	}

	return c
}

// Get retrieves a value from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	e, exists := c.items[key]
	if !exists {
		c.misses++
		c.mu.Unlock()
		return zero, false
	}

	if e.expired(c.now()) {
		c.removeEntry(e)
		c.misses++
		c.mu.Unlock()
		c.evicted(e)
		return zero, false
	}

	c.lru.MoveToFront(e.element)
	c.hits++
	value := e.value
	c.mu.Unlock()

	return value, true
}

// Set stores a value with the cache's TTL
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with the specified TTL
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	if e, exists := c.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		c.lru.MoveToFront(e.element)
		c.mu.Unlock()
		return
	}

	var dropped []*entry[K, V]
	for c.lru.Len() >= c.maxSize {
		if e := c.evictOldest(); e != nil {
			dropped = append(dropped, e)
		}
	}

	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lru.PushFront(e)
	c.items[key] = e
	c.mu.Unlock()

	for _, d := range dropped {
		c.evicted(d)
	}
}

// Delete removes a value from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	e, exists := c.items[key]
	if exists {
		c.removeEntry(e)
	}
	c.mu.Unlock()

	if exists {
		c.evicted(e)
	}
}

// Size returns the current number of entries in the cache
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[K, V]) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, len(c.items)
}

// GetOrSet returns the cached value for key or stores the result of fn.
// The boolean reports a cache hit.
func (c *Cache[K, V]) GetOrSet(key K, fn func() (V, error)) (V, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, false, err
	}

	c.Set(key, value)
	return value, false, nil
}

// Close stops the background sweep. Entries stay readable.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// removeEntry must be called with lock held
func (c *Cache[K, V]) removeEntry(e *entry[K, V]) {
	c.lru.Remove(e.element)
	delete(c.items, e.key)
}

// evictOldest must be called with lock held
func (c *Cache[K, V]) evictOldest() *entry[K, V] {
	oldest := c.lru.Back()
	if oldest == nil {
		return nil
	}
	e := oldest.Value.(*entry[K, V])
	c.removeEntry(e)
	c.evictions++
	return e
}

func (c *Cache[K, V]) evicted(e *entry[K, V]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

func (c *Cache[K, V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stop:
			return
		}
	}
}

// Cleanup removes all expired entries
func (c *Cache[K, V]) Cleanup() {
	c.mu.Lock()
	now := c.now()
	var dropped []*entry[K, V]
	for _, e := range c.items {
		if e.expired(now) {
			c.removeEntry(e)
			dropped = append(dropped, e)
		}
	}
	c.mu.Unlock()

	for _, e := range dropped {
		c.evicted(e)
	}
}

// Purge removes every entry, running the eviction callback for each
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	dropped := make([]*entry[K, V], 0, len(c.items))
	for _, e := range c.items {
		c.removeEntry(e)
		dropped = append(dropped, e)
	}
	c.mu.Unlock()

	for _, e := range dropped {
		c.evicted(e)
	}
}
