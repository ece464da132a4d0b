package dto

import (
	"net/http"
	"time"
)

// Error codes returned in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInternal       = "internal_error"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeConflict       = "conflict"
	ErrCodeTimeout        = "timeout"
	// ErrCodeUnavailable is used when an upstream dependency is down.
	ErrCodeUnavailable = "service_unavailable"
	// ErrCodeUnprocessable is used for well-formed input that fails validation.
	ErrCodeUnprocessable = "unprocessable"
)

// SuccessResponse wraps successful API responses.
// @Description Successful API response wrapper
type SuccessResponse struct {
	Data      interface{} `json:"data" swaggertype:"object"`
	Message   string      `json:"message,omitempty" example:"Shared plans imported"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2026-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the error body of every endpoint.
// @Description Standardized error response
type ErrorResponse struct {
	Error     string            `json:"error" example:"not_found"`
	Message   string            `json:"message,omitempty" example:"Plan not found"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2026-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewSuccess wraps data for a response.
func NewSuccess(data interface{}, requestID string) SuccessResponse {
	return SuccessResponse{Data: data, RequestID: requestID, Timestamp: time.Now()}
}

// WithMessage adds a human-readable message.
func (s SuccessResponse) WithMessage(message string) SuccessResponse {
	s.Message = message
	return s
}

// NewError creates an ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetail adds one detail entry, typically the failing field or reason.
func (e ErrorResponse) WithDetail(key, value string) ErrorResponse {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// ErrCodeFromStatus returns the error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnprocessableEntity:
		return ErrCodeUnprocessable
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}
