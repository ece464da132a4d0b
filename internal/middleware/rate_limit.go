package middleware

import (
	"hash/maphash"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
)

const defaultNumShards = 16

// bucket is the fixed-window counter of one client.
type bucket struct {
	tokens    int
	lastReset time.Time
}

type rateLimiterShard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// RateLimiter is a fixed-window limiter keyed by client, with buckets
// spread over shards to keep lock contention low.
type RateLimiter struct {
	shards []*rateLimiterShard
	seed   maphash.Seed
	rate   int
	window time.Duration
	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter allows rate requests per window and client.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return NewShardedRateLimiter(rate, window, defaultNumShards)
}

// NewShardedRateLimiter is NewRateLimiter with an explicit shard count.
func NewShardedRateLimiter(rate int, window time.Duration, numShards int) *RateLimiter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}

	shards := make([]*rateLimiterShard, numShards)
	for i := range shards {
		shards[i] = &rateLimiterShard{buckets: make(map[string]*bucket)}
	}

	rl := &RateLimiter{
		shards: shards,
		seed:   maphash.MakeSeed(),
		rate:   rate,
		window: window,
		stopCh: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) shard(key string) *rateLimiterShard {
	return rl.shards[maphash.String(rl.seed, key)%uint64(len(rl.shards))]
}

// allow takes one token from key's bucket.
func (rl *RateLimiter) allow(key string) (bool, int) {
	s := rl.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	now := time.Now()
	if !ok || now.Sub(b.lastReset) > rl.window {
		s.buckets[key] = &bucket{tokens: rl.rate - 1, lastReset: now}
		return true, rl.rate - 1
	}
	if b.tokens <= 0 {
		return false, 0
	}
	b.tokens--
	return true, b.tokens
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.RateLimitScoped("")
}

// RateLimitScoped limits requests per client IP in a bucket separate from
// other scopes. The food lookup routes use their own scope so searches
// cannot starve planner edits.
func (rl *RateLimiter) RateLimitScoped(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if scope != "" {
			key = scope + ":" + key
		}

		allowed, remaining := rl.allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			message := i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewError(dto.ErrCodeRateLimit, message).WithRequestID(GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictExpired(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// evictExpired drops buckets idle for two windows.
func (rl *RateLimiter) evictExpired(now time.Time) {
	threshold := rl.window * 2
	for _, s := range rl.shards {
		s.mu.Lock()
		for key, b := range s.buckets {
			if now.Sub(b.lastReset) > threshold {
				delete(s.buckets, key)
			}
		}
		s.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Stats reports tracked clients in total and per shard.
func (rl *RateLimiter) Stats() (total int, perShard []int) {
	perShard = make([]int, len(rl.shards))
	for i, s := range rl.shards {
		s.mu.Lock()
		perShard[i] = len(s.buckets)
		total += perShard[i]
		s.mu.Unlock()
	}
	return total, perShard
}
