package service

import (
	"math"
	"time"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/service/cache"
)

// MacroCalculator converts a product and an amount into a macro vector.
type MacroCalculator interface {
	Calculate(product *model.Product, amount float64, kind model.UnitKind) model.Macros
	// InvalidateCache drops memoized results.
	InvalidateCache()
}

// calcKey captures the full product value so edited products never hit stale entries.
type calcKey struct {
	product model.Product
	amount  float64
	kind    model.UnitKind
}

// CalculatorOption configures a MacroCalculatorService.
type CalculatorOption func(*MacroCalculatorService)

// MacroCalculatorService implements MacroCalculator.
type MacroCalculatorService struct {
	cache cache.Cache[calcKey, model.Macros]
}

// NewMacroCalculatorService creates a calculator with the given options.
func NewMacroCalculatorService(opts ...CalculatorOption) *MacroCalculatorService {
	s := &MacroCalculatorService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithCache enables memoization with the given capacity and TTL.
func WithCache(capacity int, ttl time.Duration) CalculatorOption {
	return func(s *MacroCalculatorService) {
		if capacity > 0 {
			s.cache = newTTLCache[calcKey, model.Macros](capacity, ttl)
		}
	}
}

// WithShardedCache enables memoization spread across shards.
func WithShardedCache(capacity int, ttl time.Duration, shards int) CalculatorOption {
	return func(s *MacroCalculatorService) {
		if capacity > 0 {
			s.cache = NewShardedCache[calcKey, model.Macros](capacity, ttl, shards)
		}
	}
}

// Calculate scales the product's per-serving macros to amount.
// With UnitGrams the factor is amount/servingGrams; with UnitCount it is
// amount*gramsPerUnit/servingGrams. A nil product, a non-positive serving
// size, or a zero or non-finite amount yields the zero vector.
func (s *MacroCalculatorService) Calculate(product *model.Product, amount float64, kind model.UnitKind) model.Macros {
	if product == nil || product.ServingGrams <= 0 || amount == 0 ||
		math.IsNaN(amount) || math.IsInf(amount, 0) {
		metrics.RecordMacroCalculation("zero")
		return model.Macros{}
	}

	key := calcKey{product: *product, amount: amount, kind: kind}
	if s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			metrics.RecordMacroCalculation("cached")
			return m
		}
	}

	grams := amount
	if kind == model.UnitCount {
		grams = amount * product.UnitGrams()
	}
	result := product.Serving().Scale(grams / product.ServingGrams)

	if s.cache != nil {
		s.cache.Set(key, result)
	}
	metrics.RecordMacroCalculation("computed")
	return result
}

// InvalidateCache clears the memoization cache.
func (s *MacroCalculatorService) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Stop releases the cache's background cleanup.
func (s *MacroCalculatorService) Stop() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

// CacheMetrics returns cache metrics when the cache reports them.
func (s *MacroCalculatorService) CacheMetrics() (cache.Metrics, bool) {
	if cm, ok := s.cache.(cache.CacheWithMetrics[calcKey, model.Macros]); ok {
		return cm.Metrics(), true
	}
	return cache.Metrics{}, false
}
