package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/logger"
)

// ErrorHandler writes a response for errors attached with c.Error when the
// handler did not write one itself. Bind errors become 400, anything else 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		requestID := GetRequestID(c)

		log := logger.Logger()
		log.Error().
			Str("request_id", requestID).
			Str("error", err.Error()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}

		status, code, key := http.StatusInternalServerError, dto.ErrCodeInternal, i18n.ErrKeyInternalError
		if err.IsType(gin.ErrorTypeBind) {
			status, code, key = http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyInvalidRequestBody
		}

		message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
		c.JSON(status, dto.NewError(code, message).WithRequestID(requestID))
	}
}
