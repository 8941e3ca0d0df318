package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a bounded LRU whose entries also expire after a fixed TTL.
// Used in front of vendor HTTP calls so repeated symbol lookups within the
// TTL never leave the process.
type TTLCache struct {
	lru *lru.Cache
	ttl time.Duration
}

// NewTTLCache creates a cache holding at most size entries for up to ttl.
func NewTTLCache(size int, ttl time.Duration) (*TTLCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lru: l, ttl: ttl}, nil
}

// Get returns the cached value if present and not expired. Expired entries
// are evicted on read.
func (c *TTLCache) Get(key string) (any, bool) {
	raw, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := raw.(entry)
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores the value with the cache's TTL.
func (c *TTLCache) Set(key string, value any) {
	c.lru.Add(key, entry{value: value, expiresAt: time.Now().Add(c.ttl)})
}
