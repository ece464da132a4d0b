// Package http exposes the macro engine over a gin JSON API.
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/lookup"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
)

// activePlanAlias addresses the active plan in plan routes.
const activePlanAlias = "active"

// Services are the dependencies of the API handlers. Lookup may be nil,
// which disables the food database routes.
type Services struct {
	Products service.ProductService
	Planner  service.PlannerService
	Share    service.ShareService
	Session  service.SessionService
	Transfer service.TransferService
	Lookup   lookup.Searcher
}

// Handler groups the API handlers.
type Handler struct {
	products *ProductHandler
	planner  *PlannerHandler
	share    *ShareHandler
	transfer *TransferHandler
	lookup   *LookupHandler
}

// NewHandler builds every handler from svc.
func NewHandler(svc Services) *Handler {
	return &Handler{
		products: NewProductHandler(svc.Products),
		planner:  NewPlannerHandler(svc.Planner),
		share:    NewShareHandler(svc.Share, svc.Session),
		transfer: NewTransferHandler(svc.Transfer),
		lookup:   NewLookupHandler(svc.Lookup),
	}
}

// routeGroups lists the groups registered under /api.
func (h *Handler) routeGroups() []RouteGroup {
	return []RouteGroup{h.products, h.planner, h.share, h.transfer, h.lookup}
}

// planParam reads :planId; "active" maps to the blank id the services
// resolve to the active plan.
func planParam(c *gin.Context) model.ID {
	id := c.Param("planId")
	if id == activePlanAlias {
		return ""
	}
	return model.ID(id)
}

// mealParam reads the zero-based :meal index.
func mealParam(c *gin.Context) (int, error) {
	raw := c.Param("meal")
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, &dto.ValidationError{Field: "meal", Message: "must be a non-negative index"}
	}
	return i, nil
}

// audit records a workspace change when a logging service is configured.
func audit(c *gin.Context, action, resource, message string, fields map[string]interface{}) {
	if ls := middleware.LoggingServiceFrom(c); ls != nil {
		middleware.AuditLog(ls, c, action, resource, message, fields)
	}
}

func auditError(c *gin.Context, action, resource, message string, err error) {
	if ls := middleware.LoggingServiceFrom(c); ls != nil {
		middleware.AuditLogError(ls, c, action, resource, message, err, nil)
	}
}
