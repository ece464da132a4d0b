package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/guttosm/macro-service/internal/service/cache"
)

const (
	// IdempotencyKeyHeader names the client-chosen key of a mutating request.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a response can be replayed.
	IdempotencyKeyTTL = 5 * time.Minute

	idempotencyCapacity = 4096
	idempotencyShards   = 8
)

// replaySkippedHeaders are owned by outer middleware (request id,
// compression) and set again on every response.
var replaySkippedHeaders = map[string]struct{}{
	http.CanonicalHeaderKey(RequestIDHeader): {},
	"Content-Encoding":                       {},
	"Content-Length":                         {},
	"Vary":                                   {},
}

type cachedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IdempotencyConfig configures Idempotency.
type IdempotencyConfig struct {
	Cache   cache.Cache[string, *cachedResponse]
	Enabled bool
}

// DefaultIdempotencyConfig keeps replays in a sharded TTL cache.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Cache:   service.NewShardedCache[string, *cachedResponse](idempotencyCapacity, IdempotencyKeyTTL, idempotencyShards),
		Enabled: true,
	}
}

// Idempotency replays the stored 2xx response when a POST, PUT or PATCH
// repeats an Idempotency-Key with the same method, path and body. This
// keeps a retried "duplicate plan" or "add item" from applying twice.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Cache == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		cacheKey, err := idempotencyCacheKey(key, c.Request)
		if err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			c.Abort()
			return
		}

		if cached, ok := cfg.Cache.Get(cacheKey); ok {
			header := c.Writer.Header()
			for k, values := range cached.Header {
				if _, skip := replaySkippedHeaders[http.CanonicalHeaderKey(k)]; skip {
					continue
				}
				header[k] = append([]string(nil), values...)
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(cached.StatusCode, cached.Header.Get("Content-Type"), cached.Body)
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= 200 && status < 300 {
			cfg.Cache.Set(cacheKey, &cachedResponse{
				StatusCode: status,
				Header:     writer.Header().Clone(),
				Body:       writer.body.Bytes(),
			})
		}
	}
}

// idempotencyCacheKey hashes the key with method, path and body. The body
// is restored for the handler.
func idempotencyCacheKey(key string, req *http.Request) (string, error) {
	h := sha256.New()
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write([]byte(req.URL.Path))
	h.Write([]byte{0})

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
