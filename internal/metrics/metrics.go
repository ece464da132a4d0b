// Package metrics provides Prometheus metrics collection for the macro service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// MacroCalculationsTotal counts calculator invocations by outcome (computed, cached, zero).
	MacroCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macro_calculations_total",
			Help: "Total number of macro calculations",
		},
		[]string{"result"},
	)

	// PlanSummaryDuration tracks how long a full plan summary takes.
	PlanSummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_summary_duration_seconds",
			Help:    "Plan summary duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// AutoBalanceTotal counts auto-balance runs by priority macro and outcome.
	AutoBalanceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autobalance_runs_total",
			Help: "Total number of auto-balance runs",
		},
		[]string{"priority", "result"},
	)

	// ShareOperationsTotal counts share link encodes and decodes.
	ShareOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_operations_total",
			Help: "Total number of share link operations",
		},
		[]string{"operation", "result"},
	)

	// ShareLinkBytes tracks the size of encoded share values.
	ShareLinkBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "share_link_bytes",
			Help:    "Size of encoded share values in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		},
	)

	// ImportsTotal counts file imports by document kind and outcome.
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imports_total",
			Help: "Total number of document imports",
		},
		[]string{"kind", "result"},
	)

	// LookupRequestsTotal counts external food database lookups.
	LookupRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_requests_total",
			Help: "Total number of external product lookups",
		},
		[]string{"result"},
	)

	// LookupDuration tracks external lookup latency.
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookup_duration_seconds",
			Help:    "External product lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// StateSavesTotal counts persisted state writes by storage key and outcome.
	StateSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_saves_total",
			Help: "Total number of state persistence writes",
		},
		[]string{"key", "result"},
	)

	// CircuitBreakerState exposes breaker state (0 closed, 1 open, 2 half-open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordMacroCalculation records one calculator call.
func RecordMacroCalculation(result string) {
	MacroCalculationsTotal.WithLabelValues(result).Inc()
}

// RecordPlanSummary records the duration of a plan summary.
func RecordPlanSummary(duration time.Duration) {
	PlanSummaryDuration.Observe(duration.Seconds())
}

// RecordAutoBalance records an auto-balance run.
func RecordAutoBalance(priority, result string) {
	AutoBalanceTotal.WithLabelValues(priority, result).Inc()
}

// RecordShareOperation records a share encode or decode.
func RecordShareOperation(operation, result string) {
	ShareOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordShareLinkSize records the length of an encoded share value.
func RecordShareLinkSize(n int) {
	ShareLinkBytes.Observe(float64(n))
}

// RecordImport records a document import.
func RecordImport(kind, result string) {
	ImportsTotal.WithLabelValues(kind, result).Inc()
}

// RecordLookup records an external lookup call.
func RecordLookup(duration time.Duration, result string) {
	LookupDuration.Observe(duration.Seconds())
	LookupRequestsTotal.WithLabelValues(result).Inc()
}

// RecordStateSave records a state persistence write.
func RecordStateSave(key, result string) {
	StateSavesTotal.WithLabelValues(key, result).Inc()
}

// SetCircuitBreakerState publishes the numeric state of a named breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}
