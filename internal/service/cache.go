// Package service contains the business logic for the macro service.
package service

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/service/cache"
)

// cachedTime is refreshed every 100ms so cache writes avoid time.Now().
var (
	cachedTime     atomic.Value
	cachedTimeOnce sync.Once
)

func init() {
	initCachedTime()
}

func initCachedTime() {
	cachedTimeOnce.Do(func() {
		cachedTime.Store(time.Now())
		go func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			for t := range ticker.C {
				cachedTime.Store(t)
			}
		}()
	})
}

// now returns the cached current time. Only use it for expiry stamps.
func now() time.Time {
	if t, ok := cachedTime.Load().(time.Time); ok {
		return t
	}
	return time.Now()
}

// ShardedCache spreads entries across independently locked TTL caches.
type ShardedCache[K comparable, V any] struct {
	shards    []*ttlCache[K, V]
	numShards int
	shardMask uint64
	seed      maphash.Seed
}

// NewShardedCache creates a sharded cache. numShards is rounded up to a
// power of two and defaults to 16.
func NewShardedCache[K comparable, V any](capacity int, ttl time.Duration, numShards int) *ShardedCache[K, V] {
	if numShards <= 0 {
		numShards = 16
	}
	n := 1
	for n < numShards {
		n *= 2
	}
	numShards = n

	perShard := capacity / numShards
	if perShard < 1 {
		perShard = 1
	}

	shards := make([]*ttlCache[K, V], numShards)
	for i := range shards {
		shards[i] = newTTLCache[K, V](perShard, ttl)
	}

	return &ShardedCache[K, V]{
		shards:    shards,
		numShards: numShards,
		shardMask: uint64(numShards - 1),
		seed:      maphash.MakeSeed(),
	}
}

func (sc *ShardedCache[K, V]) shard(key K) *ttlCache[K, V] {
	return sc.shards[maphash.Comparable(sc.seed, key)&sc.shardMask]
}

// Get retrieves a value from the owning shard.
func (sc *ShardedCache[K, V]) Get(key K) (V, bool) {
	return sc.shard(key).Get(key)
}

// Set stores a value in the owning shard.
func (sc *ShardedCache[K, V]) Set(key K, value V) {
	sc.shard(key).Set(key, value)
}

// Invalidate removes a key from the owning shard.
func (sc *ShardedCache[K, V]) Invalidate(key K) {
	sc.shard(key).Invalidate(key)
}

// Clear empties every shard.
func (sc *ShardedCache[K, V]) Clear() {
	for _, s := range sc.shards {
		s.Clear()
	}
}

// Stop shuts down every shard's cleanup loop.
func (sc *ShardedCache[K, V]) Stop() {
	for _, s := range sc.shards {
		s.Stop()
	}
}

// Metrics aggregates metrics from all shards.
func (sc *ShardedCache[K, V]) Metrics() cache.Metrics {
	var total cache.Metrics
	for _, s := range sc.shards {
		m := s.Metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	return total
}

// ttlCache is a thread-safe LRU cache with per-entry expiry.
type ttlCache[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	ttl       time.Duration
	items     map[K]*cacheEntry[K, V]
	head      *cacheEntry[K, V]
	tail      *cacheEntry[K, V]
	stopCh    chan struct{}
	stopOnce  sync.Once
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type cacheEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	prev      *cacheEntry[K, V]
	next      *cacheEntry[K, V]
}

// newTTLCache creates a TTL LRU cache and starts its cleanup loop.
func newTTLCache[K comparable, V any](capacity int, ttl time.Duration) *ttlCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &ttlCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*cacheEntry[K, V], capacity),
		stopCh:   make(chan struct{}),
	}
	go c.startCleanup()
	return c
}

// Stop shuts down the cleanup loop. Safe to call more than once.
func (c *ttlCache[K, V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Metrics returns current cache performance metrics.
func (c *ttlCache[K, V]) Metrics() cache.Metrics {
	c.mu.Lock()
	size := len(c.items)
	c.mu.Unlock()

	return cache.Metrics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      size,
		Capacity:  c.capacity,
	}
}

// Get returns the value for key if present and not expired.
func (c *ttlCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	entry, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		metrics.RecordCacheOperation("get", "miss")
		return zero, false
	}

	// time.Now here: the cached clock can lag by up to 100ms.
	if time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.mu.Unlock()
		c.misses.Add(1)
		metrics.RecordCacheOperation("get", "expired")
		return zero, false
	}

	c.moveToFront(entry)
	value := entry.value
	c.mu.Unlock()

	c.hits.Add(1)
	metrics.RecordCacheOperation("get", "hit")
	return value, true
}

// Set adds or refreshes key, evicting the least recently used entry at capacity.
func (c *ttlCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.expiresAt = now().Add(c.ttl)
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry[K, V]{
		key:       key,
		value:     value,
		expiresAt: now().Add(c.ttl),
	}
	c.items[key] = entry
	c.addToFront(entry)

	if len(c.items) > c.capacity {
		c.removeTail()
		c.evictions.Add(1)
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
}

func (c *ttlCache[K, V]) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			full := len(c.items) > c.capacity*80/100
			c.mu.Unlock()
			if full {
				c.cleanup()
			}
		case <-c.stopCh:
			return
		}
	}
}

// cleanup removes every expired entry.
func (c *ttlCache[K, V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := time.Now()
	for _, entry := range c.items {
		if current.After(entry.expiresAt) {
			c.removeEntry(entry)
		}
	}
}

func (c *ttlCache[K, V]) removeEntry(entry *cacheEntry[K, V]) {
	delete(c.items, entry.key)
	c.unlink(entry)
}

func (c *ttlCache[K, V]) moveToFront(entry *cacheEntry[K, V]) {
	if entry == c.head {
		return
	}
	c.unlink(entry)
	c.addToFront(entry)
}

func (c *ttlCache[K, V]) addToFront(entry *cacheEntry[K, V]) {
	entry.prev = nil
	entry.next = c.head
	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry
	if c.tail == nil {
		c.tail = entry
	}
}

func (c *ttlCache[K, V]) unlink(entry *cacheEntry[K, V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
	entry.prev, entry.next = nil, nil
}

func (c *ttlCache[K, V]) removeTail() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
}

// Invalidate removes a single key.
func (c *ttlCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		metrics.RecordCacheOperation("invalidate", "success")
	}
}

// Clear removes all entries and resets counters.
func (c *ttlCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*cacheEntry[K, V], c.capacity)
	c.head = nil
	c.tail = nil

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)

	metrics.RecordCacheOperation("clear", "success")
}
