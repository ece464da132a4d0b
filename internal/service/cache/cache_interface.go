// Package cache defines the memoization contract used by the calculator.
package cache

// Cache is a keyed store with expiry-aware lookups.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Invalidate(key K)
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (m Metrics) HitRatio() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics[K comparable, V any] interface {
	Cache[K, V]
	Metrics() Metrics
}
