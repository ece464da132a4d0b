package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
)

var (
	successResponsePool = sync.Pool{
		New: func() interface{} {
			return &dto.SuccessResponse{}
		},
	}

	errorResponsePool = sync.Pool{
		New: func() interface{} {
			return &dto.ErrorResponse{}
		},
	}
)

func getSuccessResponse() *dto.SuccessResponse {
	if resp, ok := successResponsePool.Get().(*dto.SuccessResponse); ok {
		return resp
	}
	return &dto.SuccessResponse{}
}

func putSuccessResponse(resp *dto.SuccessResponse) {
	*resp = dto.SuccessResponse{}
	successResponsePool.Put(resp)
}

func getErrorResponse() *dto.ErrorResponse {
	if resp, ok := errorResponsePool.Get().(*dto.ErrorResponse); ok {
		return resp
	}
	return &dto.ErrorResponse{}
}

func putErrorResponse(resp *dto.ErrorResponse) {
	*resp = dto.ErrorResponse{}
	errorResponsePool.Put(resp)
}

// ResponseBuilder writes the standard response envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a response builder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success sends data in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	b.send(statusCode, data, "")
}

// SuccessOK sends a 200 response.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 response.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// SuccessWithMessage sends a 200 response with a translated message.
func (b *ResponseBuilder) SuccessWithMessage(data interface{}, messageKey string) {
	b.send(http.StatusOK, data, i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c)))
}

func (b *ResponseBuilder) send(statusCode int, data interface{}, message string) {
	resp := getSuccessResponse()
	resp.Data = data
	resp.Message = message
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	// gin serializes synchronously, so the response can go back right away
	b.c.JSON(statusCode, resp)
	putSuccessResponse(resp)
}

// Error sends an ErrorResponse with the translated messageKey. err is
// attached to the context for the error handler to log.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.errorWithDetails(statusCode, messageKey, err, nil)
}

// Fail maps a service error to its status and message. Import rejections
// carry their reason in details.
func (b *ResponseBuilder) Fail(err error) {
	status, key := statusFor(err)
	var details map[string]string
	if errors.Is(err, service.ErrInvalidImport) {
		details = map[string]string{"reason": importReason(err)}
	}
	b.errorWithDetails(status, key, err, details)
}

// FailWithDetails is Fail with extra detail entries.
func (b *ResponseBuilder) FailWithDetails(err error, details map[string]string) {
	status, key := statusFor(err)
	b.errorWithDetails(status, key, err, details)
}

func (b *ResponseBuilder) errorWithDetails(statusCode int, messageKey string, err error, details map[string]string) {
	resp := getErrorResponse()
	resp.Error = dto.ErrCodeFromStatus(statusCode)
	resp.Message = i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	resp.Details = details
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(statusCode, resp)
	putErrorResponse(resp)
}

// importReason strips the sentinel prefix from an import rejection.
func importReason(err error) string {
	msg := err.Error()
	if _, reason, ok := strings.Cut(msg, service.ErrInvalidImport.Error()+": "); ok {
		return reason
	}
	return msg
}

// BindJSON decodes the body into a T. An empty body leaves T zero when
// allowEmpty is set.
func BindJSON[T any](c *gin.Context, allowEmpty bool) (*T, error) {
	var req T
	if allowEmpty && c.Request.ContentLength == 0 {
		return &req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return &req, nil
		}
		return nil, err
	}
	return &req, nil
}

// MarshalIndent renders v as the two-space indented JSON used for downloads.
func MarshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
