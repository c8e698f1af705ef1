package versatiles

import (
	"container/list"
	"sync"
)

// Weighted is implemented by cache values that know their own byte weight.
type Weighted interface {
	SizeBytes() int
}

// DefaultCacheCapacityBytes is the TileIndex cache's default capacity,
// per spec.md §5.
const DefaultCacheCapacityBytes = 100 * 1000 * 1000

// LimitedCache is a size-bounded K->V cache with strict LRU eviction,
// grounded on the teacher's container/list-based eviction loop in
// pmtiles/server.go's cache actor. Unlike that actor, this type is a plain
// structure guarded by its own mutex, so each Get or Add is safe to call
// concurrently; a caller that needs a lookup and the following insert to be
// atomic together (as VersaTilesReader does) holds its own lock around both.
type LimitedCache[K comparable, V Weighted] struct {
	mu         sync.Mutex
	capacity   int
	totalBytes int
	entries    map[K]*list.Element
	order      *list.List // front = most recently touched
}

type cacheEntry[K comparable, V Weighted] struct {
	key   K
	value V
}

// NewLimitedCache builds a cache with the given byte capacity.
func NewLimitedCache[K comparable, V Weighted](capacityBytes int) *LimitedCache[K, V] {
	return &LimitedCache[K, V]{
		capacity: capacityBytes,
		entries:  make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for k, updating its recency, and whether it was
// present.
func (c *LimitedCache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[k]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry[K, V]).value, true
}

// Add inserts v under k and returns it, evicting least-recently-touched
// entries until the cache is back under capacity. If k is already present,
// its value is replaced and it becomes most-recently-touched.
func (c *LimitedCache[K, V]) Add(k K, v V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[k]; ok {
		old := elem.Value.(*cacheEntry[K, V])
		c.totalBytes -= old.value.SizeBytes()
		old.value = v
		c.totalBytes += v.SizeBytes()
		c.order.MoveToFront(elem)
		c.evictLocked()
		return v
	}

	elem := c.order.PushFront(&cacheEntry[K, V]{key: k, value: v})
	c.entries[k] = elem
	c.totalBytes += v.SizeBytes()
	c.evictLocked()
	return v
}

func (c *LimitedCache[K, V]) evictLocked() {
	for c.totalBytes > c.capacity {
		back := c.order.Back()
		if back == nil {
			return
		}
		entry := back.Value.(*cacheEntry[K, V])
		c.order.Remove(back)
		delete(c.entries, entry.key)
		c.totalBytes -= entry.value.SizeBytes()
	}
}

// Len returns the number of cached entries.
func (c *LimitedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TotalBytes returns the current total cache weight.
func (c *LimitedCache[K, V]) TotalBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}
