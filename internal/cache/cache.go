package cache

import (
	"container/list"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxBytes is the default memory budget: 500MiB, per spec
// §4.8's example configuration.
const DefaultMaxBytes = 500 * 1024 * 1024

// Stats reports cumulative cache activity, observable per spec §4.8.
type Stats struct {
	Hits   uint64
	Misses uint64
	Bytes  int64
}

type entry struct {
	key  Key
	data []float32
	elem *list.Element
}

// Cache is the LRU-by-last-used-tick sample store of spec §4.8, with
// a golang.org/x/sync/singleflight group enforcing "at most one
// concurrent synthesis per key" when multiple voices miss
// simultaneously on the same key.
type Cache struct {
	mu       sync.Mutex
	maxBytes int64
	bytes    int64
	entries  map[Key]*entry
	order    *list.List // front = most recently used

	group singleflight.Group

	hits, misses uint64
}

// New builds an empty Cache with the given memory budget in bytes.
func New(maxBytes int64) *Cache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Cache{
		maxBytes: maxBytes,
		entries:  make(map[Key]*entry),
		order:    list.New(),
	}
}

// Get returns the cached sample array for key, promoting it to
// most-recently-used on a hit.
func (c *Cache) Get(key Key) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	c.hits++
	return e.data, true
}

// GetOrCompute returns the cached sample array for key, computing it
// with compute and storing the result if it is not already present.
// Concurrent misses on the same key block behind the first caller's
// compute, per spec §4.8's invariant, rather than duplicating work.
func (c *Cache) GetOrCompute(key Key, compute func() []float32) []float32 {
	if data, ok := c.Get(key); ok {
		return data
	}
	groupKey := strconv.FormatUint(uint64(key), 16)
	v, _, _ := c.group.Do(groupKey, func() (any, error) {
		if data, ok := c.Get(key); ok {
			return data, nil
		}
		data := compute()
		c.insert(key, data)
		return data, nil
	})
	return v.([]float32)
}

func (c *Cache) insert(key Key, data []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	e := &entry{key: key, data: data}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e
	c.bytes += int64(len(data)) * 4
	c.evictLocked()
}

// evictLocked drops least-recently-used entries until the cache is
// back under its memory budget. Caller must hold c.mu.
func (c *Cache) evictLocked() {
	for c.bytes > c.maxBytes {
		back := c.order.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry)
		c.order.Remove(back)
		delete(c.entries, e.key)
		c.bytes -= int64(len(e.data)) * 4
	}
}

// Stats returns a snapshot of cumulative cache activity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Bytes: c.bytes}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
