// Package cache is a small in-process TTL cache for hot list responses.
// Entries expire lazily on read, mutations drop the whole cache rather
// than chase individual keys.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	val any
	exp int64 // unix nanos
}

type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().UnixNano() > e.exp {
		c.mu.Lock()
		// re-check under the write lock, a Set may have raced us
		if cur, ok := c.m[key]; ok && cur.exp == e.exp {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	exp := time.Now().Add(c.ttl).UnixNano()
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: exp}
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
