package service

import (
	"sync"
	"testing"
	"time"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/service/cache"
	"github.com/stretchr/testify/assert"
)

func TestTTLCache_Get(t *testing.T) {
	tests := []struct {
		name          string
		setupCache    func() *ttlCache[string, model.Macros]
		key           string
		expectedValue model.Macros
		expectedFound bool
	}{
		{
			name: "returns value when exists and not expired",
			setupCache: func() *ttlCache[string, model.Macros] {
				c := newTTLCache[string, model.Macros](10, time.Minute)
				c.Set("tofu", model.Macros{Calories: 114, Protein: 12})
				return c
			},
			key:           "tofu",
			expectedValue: model.Macros{Calories: 114, Protein: 12},
			expectedFound: true,
		},
		{
			name: "returns false when key not found",
			setupCache: func() *ttlCache[string, model.Macros] {
				return newTTLCache[string, model.Macros](10, time.Minute)
			},
			key:           "missing",
			expectedFound: false,
		},
		{
			name: "returns false when expired",
			setupCache: func() *ttlCache[string, model.Macros] {
				c := newTTLCache[string, model.Macros](10, 50*time.Millisecond)
				c.Set("tofu", model.Macros{Calories: 1})
				time.Sleep(200 * time.Millisecond)
				return c
			},
			key:           "tofu",
			expectedFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.setupCache()
			defer c.Stop()

			value, found := c.Get(tt.key)
			assert.Equal(t, tt.expectedFound, found)
			if tt.expectedFound {
				assert.Equal(t, tt.expectedValue, value)
			}
		})
	}
}

func TestTTLCache_Eviction(t *testing.T) {
	c := newTTLCache[int, int](3, time.Minute)
	defer c.Stop()

	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	// 1 becomes most recent, 2 is now LRU
	c.Get(1)
	c.Set(4, 4)

	_, ok1 := c.Get(1)
	_, ok2 := c.Get(2)
	_, ok3 := c.Get(3)
	_, ok4 := c.Get(4)

	assert.True(t, ok1, "entry 1 was accessed")
	assert.False(t, ok2, "entry 2 was LRU")
	assert.True(t, ok3)
	assert.True(t, ok4)
	assert.Equal(t, int64(1), c.Metrics().Evictions)
}

func TestTTLCache_UpdateExistingEntry(t *testing.T) {
	c := newTTLCache[string, float64](10, time.Minute)
	defer c.Stop()

	c.Set("k", 1)
	c.Set("k", 2)

	v, found := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 1, c.Metrics().Size)
}

func TestTTLCache_InvalidateAndClear(t *testing.T) {
	c := newTTLCache[string, int](10, time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	c.Invalidate("not-there")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Metrics().Size)

	c.Clear()
	m := c.Metrics()
	assert.Equal(t, 0, m.Size)
	assert.Equal(t, int64(0), m.Hits)
	assert.Equal(t, int64(0), m.Misses)
}

func TestTTLCache_Cleanup(t *testing.T) {
	c := newTTLCache[int, int](10, 50*time.Millisecond)
	defer c.Stop()

	c.Set(1, 1)
	c.Set(2, 2)
	time.Sleep(200 * time.Millisecond)

	c.cleanup()
	assert.Equal(t, 0, c.Metrics().Size)
}

func TestTTLCache_Metrics(t *testing.T) {
	c := newTTLCache[int, int](10, time.Minute)
	defer c.Stop()

	c.Set(1, 1)
	c.Get(1)
	c.Get(2)

	m := c.Metrics()
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, 1, m.Size)
	assert.Equal(t, 10, m.Capacity)
}

func TestTTLCache_StopTwice(t *testing.T) {
	c := newTTLCache[int, int](1, time.Minute)
	assert.NotPanics(t, func() {
		c.Stop()
		c.Stop()
	})
}

func TestTTLCache_ImplementsInterface(t *testing.T) {
	var _ cache.Cache[int, int] = (*ttlCache[int, int])(nil)
	var _ cache.CacheWithMetrics[int, int] = (*ttlCache[int, int])(nil)
}

func TestTTLCache_Concurrency(t *testing.T) {
	c := newTTLCache[int, int](100, time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Set(base*100+j, j)
				c.Get(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Metrics().Size)
}
