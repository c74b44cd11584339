package listquery

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is an LRU map with an optional time to live, keyed by snapshot key.
// It is safe for concurrent use and is meant to be shared explicitly between
// the executors that need it.
type Cache[V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, cacheEntry[V]]
	ttl time.Duration
	now func() time.Time
}

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// NewCache creates a cache holding at most maxEntries values, each valid for
// ttl. maxEntries <= 0 means unbounded, ttl <= 0 means no expiry.
func NewCache[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = math.MaxInt
	}
	l, err := simplelru.NewLRU[string, cacheEntry[V]](maxEntries, nil)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Cache[V]{lru: l, ttl: ttl, now: time.Now}
}

// Get returns the fresh value for key. Expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.lru.Peek(key)
	if !ok {
		return zero, false
	}
	if c.expired(ent) {
		c.lru.Remove(key)
		return zero, false
	}
	c.lru.Get(key) // 标记为最近使用
	return ent.value, true
}

// Set stores value under key and evicts the least recently used entries
// beyond the size bound.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cacheEntry[V]{value: value, storedAt: c.now()})
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// InvalidatePrefix removes every key starting with prefix and returns how
// many were removed.
func (c *Cache[V]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge empties the cache.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *Cache[V]) expired(ent cacheEntry[V]) bool {
	return c.ttl > 0 && c.now().Sub(ent.storedAt) >= c.ttl
}
