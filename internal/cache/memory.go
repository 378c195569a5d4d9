package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// entry stores a cached payload, its tags and its absolute expiration timestamp.
type entry struct {
	payload   []byte
	tags      []string
	expiresAt time.Time // zero means no expiration
}

// MemoryBackend is a map-backed TagCache with a reverse tag index.
// Expired entries are treated as misses and evicted when next read.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]entry
	// tagIndex maps a tag to the set of keys carrying it.
	tagIndex map[string]map[string]struct{}
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items:    make(map[string]entry),
		tagIndex: make(map[string]map[string]struct{}),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Get implements TagCache.Get.
func (c *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if ok && e.expired(now()) {
		c.evictExpired(key)
		ok = false
	}
	if !ok {
		cacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, false, nil
	}
	cacheHits.WithLabelValues(backendMemory).Inc()
	return e.payload, true, nil
}

// evictExpired removes key if it is still expired under the write lock; a
// concurrent Set may have replaced it in the meantime.
func (c *MemoryBackend) evictExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok && e.expired(now()) {
		c.unindex(key, e.tags)
		delete(c.items, key)
	}
}

// Set implements TagCache.Set.
func (c *MemoryBackend) Set(_ context.Context, key string, payload []byte, ttl time.Duration, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.items[key]; ok {
		c.unindex(key, old.tags)
	}

	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	e := entry{
		payload:   append([]byte(nil), payload...),
		tags:      dedupe(tags),
		expiresAt: exp,
	}
	c.items[key] = e
	for _, tag := range e.tags {
		keys, ok := c.tagIndex[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
	cacheWrites.WithLabelValues(backendMemory).Inc()
	return nil
}

// InvalidateTags implements TagCache.InvalidateTags.
func (c *MemoryBackend) InvalidateTags(_ context.Context, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		for key := range c.tagIndex[tag] {
			if e, ok := c.items[key]; ok {
				c.unindex(key, e.tags)
				delete(c.items, key)
			}
		}
		delete(c.tagIndex, tag)
		cacheInvalidations.WithLabelValues(backendMemory).Inc()
	}
	return nil
}

// Tags returns the sorted tags of a live entry.
func (c *MemoryBackend) Tags(key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return nil, false
	}
	out := append([]string(nil), e.tags...)
	sort.Strings(out)
	return out, true
}

// Len returns the number of non-expired entries currently stored.
func (c *MemoryBackend) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	nowTs := now()
	for _, e := range c.items {
		if !e.expired(nowTs) {
			count++
		}
	}
	return count
}

// unindex drops key from the tag index. Caller holds the write lock.
func (c *MemoryBackend) unindex(key string, tags []string) {
	for _, tag := range tags {
		keys := c.tagIndex[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.tagIndex, tag)
		}
	}
}

func (e entry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Ensure MemoryBackend implements TagCache at compile time.
var _ TagCache = (*MemoryBackend)(nil)
