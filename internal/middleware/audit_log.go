package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/service"
)

// Audit actions recorded for workspace changes.
const (
	ActionShareImport   = "share_import"
	ActionFileImport    = "file_import"
	ActionSessionStart  = "session_start"
	ActionStarterLoad   = "starter_load"
	ActionPlanRemove    = "plan_remove"
	ActionPlanReset     = "plan_reset"
	ActionProductRemove = "product_remove"
	ActionAutoBalance   = "auto_balance"
)

// LoggingServiceKey is the gin context key of the request's logging service.
const LoggingServiceKey ContextKey = "logging_service"

// WithLoggingService exposes loggingService to handlers through the gin
// context so they can audit without holding a reference.
func WithLoggingService(loggingService service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if loggingService != nil {
			c.Set(string(LoggingServiceKey), loggingService)
		}
		c.Next()
	}
}

// LoggingServiceFrom returns the logging service set by WithLoggingService.
func LoggingServiceFrom(c *gin.Context) service.LoggingService {
	if v, ok := c.Get(string(LoggingServiceKey)); ok {
		if ls, ok := v.(service.LoggingService); ok {
			return ls
		}
	}
	return nil
}

// AuditLog records a workspace change such as an import or a removal.
func AuditLog(loggingService service.LoggingService, c *gin.Context, action, resource, message string, fields map[string]interface{}) {
	persist(loggingService, auditEntry(c, "info", action, resource, message, fields))
}

// AuditLogError records a rejected workspace change.
func AuditLogError(loggingService service.LoggingService, c *gin.Context, action, resource, message string, err error, fields map[string]interface{}) {
	entry := auditEntry(c, "error", action, resource, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	persist(loggingService, entry)
}

func auditEntry(c *gin.Context, level, action, resource, message string, fields map[string]interface{}) *model.LogEntry {
	return &model.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		RequestID: GetRequestID(c),
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Action:    action,
		Resource:  resource,
		Fields:    fields,
	}
}
