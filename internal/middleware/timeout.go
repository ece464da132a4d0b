package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
)

// TimeoutConfig configures Timeout.
type TimeoutConfig struct {
	// Timeout bounds the request context.
	Timeout time.Duration
	// ErrorMessage is used when no translator is loaded.
	ErrorMessage string
}

// DefaultTimeoutConfig returns a 30s budget.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout:      30 * time.Second,
		ErrorMessage: "Request timeout",
	}
}

// Timeout puts a deadline on the request context. Handlers run on the
// request goroutine and are expected to honor ctx; when the deadline passed
// and the handler wrote nothing, a 504 is sent.
func Timeout(cfg TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		message := cfg.ErrorMessage
		if translator := i18n.GetTranslator(); translator != nil {
			message = translator.Translate(i18n.ErrKeyTimeout, i18n.GetLocale(c))
		}
		c.AbortWithStatusJSON(http.StatusGatewayTimeout,
			dto.NewError(dto.ErrCodeTimeout, message).WithRequestID(GetRequestID(c)))
	}
}

// TimeoutWithDuration is Timeout with the default message.
func TimeoutWithDuration(timeout time.Duration) gin.HandlerFunc {
	cfg := DefaultTimeoutConfig()
	cfg.Timeout = timeout
	return Timeout(cfg)
}
