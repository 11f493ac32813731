package category

import (
	"sync"
	"time"
)

// Default cache configuration constants.
const (
	defaultTTL = 6 * time.Hour
)

// Clock supplies the current time; injected so expiry is testable.
type Clock func() time.Time

// Cache stores resolved category maps per (account, league) with a TTL.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	account string
	league  string
}

type cacheEntry struct {
	categories map[string]Category
	expiresAt  time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a resolved category map stays fresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(clock Clock) CacheOption {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCache creates a Cache with the given options.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:     defaultTTL,
		clock:   time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached categories for the pair, evicting a stale entry.
func (c *Cache) Get(account, league string) (map[string]Category, bool) {
	key := cacheKey{account: account, league: league}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.clock().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have refreshed.
		if cur, still := c.entries[key]; still && !c.clock().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.categories, true
}

// Put stores a resolved category map for the pair.
func (c *Cache) Put(account, league string, categories map[string]Category) {
	key := cacheKey{account: account, league: league}
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		categories: categories,
		expiresAt:  c.clock().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops the cached entry for the pair, if any.
func (c *Cache) Invalidate(account, league string) {
	key := cacheKey{account: account, league: league}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of live entries, sweeping any that have expired.
func (c *Cache) Len() int {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}
