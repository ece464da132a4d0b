package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/logger"
	"github.com/guttosm/macro-service/internal/service"
)

// unloggedPrefixes are probe and scrape paths kept out of the log store.
var unloggedPrefixes = []string{"/healthz", "/readyz", "/metrics", "/swagger"}

// RequestLogger writes one structured line per request and, with a
// logging service, persists the entry. Probe and scrape traffic is only
// logged at debug level.
func RequestLogger(loggingService service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path

		log := logger.Logger().With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status_code", status).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP()).
			Logger()

		if isUnlogged(path) {
			log.Debug().Msg("HTTP request")
			return
		}

		level := levelForStatus(status)
		switch level {
		case "error":
			log.Error().Msg("HTTP request")
		case "warn":
			log.Warn().Msg("HTTP request")
		default:
			log.Info().Msg("HTTP request")
		}

		if loggingService == nil {
			return
		}
		entry := &model.LogEntry{
			Timestamp:  start,
			Level:      level,
			Message:    "HTTP request",
			RequestID:  GetRequestID(c),
			Method:     c.Request.Method,
			Path:       path,
			StatusCode: status,
			Duration:   latency.Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.Last().Error()
		}
		persist(loggingService, entry)
	}
}

func isUnlogged(path string) bool {
	for _, prefix := range unloggedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func levelForStatus(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}
