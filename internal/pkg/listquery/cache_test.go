package listquery

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a") // a is now most recent
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestCacheTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](0, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("orders?page=1", "p1")
	now = now.Add(59 * time.Second)
	_, ok := c.Get("orders?page=1")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("orders?page=1")
	assert.False(t, ok, "expired at ttl")
	assert.Equal(t, 0, c.Len())
}

func TestCacheSetRefreshes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](0, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "old")
	now = now.Add(50 * time.Second)
	c.Set("k", "new")
	now = now.Add(50 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := NewCache[int](0, 0)
	c.Set("products?limit=10&page=1", 1)
	c.Set("products?limit=10&page=2", 2)
	c.Set("orders?limit=10&page=1", 3)

	assert.Equal(t, 2, c.InvalidatePrefix("products?"))
	assert.Equal(t, 1, c.Len())

	c.Delete("orders?limit=10&page=1")
	assert.Equal(t, 0, c.Len())

	c.Set("x", 1)
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCacheUnboundedKeepsEveryEntry(t *testing.T) {
	c := NewCache[int](0, 0)
	for i := range 500 {
		c.Set(fmt.Sprintf("orders?page=%d", i), i)
	}
	assert.Equal(t, 500, c.Len())
	v, ok := c.Get("orders?page=0")
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestCacheExpiredEntryIsNotRevived(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](2, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	now = now.Add(time.Minute)
	c.Set("b", "2")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.InvalidatePrefix("a"))
	assert.Equal(t, 1, c.InvalidatePrefix("b"))
}
