package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
)

// PlannerHandler serves plans, meals and items. Every plan route accepts
// "active" as the plan id.
type PlannerHandler struct {
	planner service.PlannerService
}

// NewPlannerHandler creates a PlannerHandler.
func NewPlannerHandler(planner service.PlannerService) *PlannerHandler {
	return &PlannerHandler{planner: planner}
}

// RegisterRoutes mounts /planner.
func (h *PlannerHandler) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	g := rg.Group("/planner")
	g.GET("", h.State)
	g.POST("/plans", h.AddPlan)

	plan := g.Group("/plans/:planId")
	plan.DELETE("", h.RemovePlan)
	plan.POST("/duplicate", h.DuplicatePlan)
	plan.POST("/activate", h.SetActivePlan)
	plan.POST("/reset", h.ResetPlan)
	plan.PUT("/name", h.RenamePlan)
	plan.PUT("/profile", h.SetProfile)
	plan.GET("/summary", h.Summary)
	plan.GET("/export.csv", h.ExportCSV)
	plan.POST("/meals", h.AddMeal)

	meal := plan.Group("/meals/:meal")
	meal.DELETE("", h.RemoveMeal)
	meal.POST("/duplicate", h.DuplicateMeal)
	meal.PUT("/name", h.RenameMeal)
	meal.PUT("/priority", h.SetMealPriority)
	meal.POST("/balance", h.AutoBalance)
	meal.POST("/items", h.AddItem)
	meal.PATCH("/items/:itemId", h.UpdateItem)
	meal.DELETE("/items/:itemId", h.RemoveItem)
}

// respondState writes the planner state returned by an edit, or its error.
func respondState(c *gin.Context, state model.PlannerState, err error) {
	builder := NewResponseBuilder(c)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(state)
}

// withMeal parses :meal and runs fn, answering 400 on a bad index.
func withMeal(c *gin.Context, fn func(meal int)) {
	meal, err := mealParam(c)
	if err != nil {
		NewResponseBuilder(c).Fail(err)
		return
	}
	fn(meal)
}

// State handles GET /api/planner.
//
// @Summary  Get the planner state
// @Tags     Planner
// @Produce  json
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Router   /api/planner [get]
func (h *PlannerHandler) State(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(h.planner.State(c.Request.Context()))
}

// AddPlan handles POST /api/planner/plans.
//
// @Summary      Add a plan
// @Description  Appends "Plan N" with zero targets and one empty meal and makes it active.
// @Tags         Planner
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Success      200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Router       /api/planner/plans [post]
func (h *PlannerHandler) AddPlan(c *gin.Context) {
	state, err := h.planner.AddPlan(c.Request.Context())
	respondState(c, state, err)
}

// RemovePlan handles DELETE /api/planner/plans/{planId}. Removing the only
// plan leaves the state unchanged.
//
// @Summary  Remove a plan
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId} [delete]
func (h *PlannerHandler) RemovePlan(c *gin.Context) {
	planID := planParam(c)
	state, err := h.planner.RemovePlan(c.Request.Context(), planID)
	if err == nil {
		audit(c, middleware.ActionPlanRemove, "planner", "Plan removed", map[string]interface{}{
			"plan_id": string(planID),
			"plans":   len(state.Plans),
		})
	}
	respondState(c, state, err)
}

// DuplicatePlan handles POST /api/planner/plans/{planId}/duplicate.
//
// @Summary  Duplicate a plan
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/duplicate [post]
func (h *PlannerHandler) DuplicatePlan(c *gin.Context) {
	state, err := h.planner.DuplicatePlan(c.Request.Context(), planParam(c))
	respondState(c, state, err)
}

// SetActivePlan handles POST /api/planner/plans/{planId}/activate.
//
// @Summary  Switch the active plan
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/activate [post]
func (h *PlannerHandler) SetActivePlan(c *gin.Context) {
	state, err := h.planner.SetActivePlan(c.Request.Context(), planParam(c))
	respondState(c, state, err)
}

// ResetPlan handles POST /api/planner/plans/{planId}/reset.
//
// @Summary  Reset a plan to zero targets and one empty meal
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/reset [post]
func (h *PlannerHandler) ResetPlan(c *gin.Context) {
	planID := planParam(c)
	state, err := h.planner.ResetPlan(c.Request.Context(), planID)
	if err == nil {
		audit(c, middleware.ActionPlanReset, "planner", "Plan reset", map[string]interface{}{"plan_id": string(planID)})
	}
	respondState(c, state, err)
}

// RenamePlan handles PUT /api/planner/plans/{planId}/name.
//
// @Summary  Rename a plan
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    request body dto.RenameRequest true "New name"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  400 {object} dto.ErrorResponse
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/name [put]
func (h *PlannerHandler) RenamePlan(c *gin.Context) {
	req, err := BindJSON[dto.RenameRequest](c, false)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidName, err)
		return
	}
	state, err := h.planner.RenamePlan(c.Request.Context(), planParam(c), req.Name)
	respondState(c, state, err)
}

// SetProfile handles PUT /api/planner/plans/{planId}/profile.
//
// @Summary  Set the daily targets of a plan
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    request body model.Profile true "Daily targets"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/profile [put]
func (h *PlannerHandler) SetProfile(c *gin.Context) {
	profile, err := BindJSON[model.Profile](c, false)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	state, err := h.planner.SetProfile(c.Request.Context(), planParam(c), *profile)
	respondState(c, state, err)
}

// Summary handles GET /api/planner/plans/{planId}/summary.
//
// @Summary      Plan totals and grades
// @Description  Per-item, per-meal and daily totals with the target and a green/yellow/red grade per macro.
// @Tags         Planner
// @Produce      json
// @Param        planId path string true "Plan id or active"
// @Success      200 {object} dto.SuccessResponse{data=service.PlanSummary}
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/planner/plans/{planId}/summary [get]
func (h *PlannerHandler) Summary(c *gin.Context) {
	builder := NewResponseBuilder(c)
	summary, err := h.planner.Summary(c.Request.Context(), planParam(c))
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(summary)
}

// ExportCSV handles GET /api/planner/plans/{planId}/export.csv.
//
// @Summary  Download a plan as CSV
// @Tags     Planner
// @Produce  text/csv
// @Param    planId path string true "Plan id or active"
// @Success  200 {file} file
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/export.csv [get]
func (h *PlannerHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.planner.ExportCSV(c.Request.Context(), planParam(c), &buf); err != nil {
		NewResponseBuilder(c).Fail(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "meal-plan.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// AddMeal handles POST /api/planner/plans/{planId}/meals.
//
// @Summary  Add a meal
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    request body dto.AddMealRequest false "Insert position"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals [post]
func (h *PlannerHandler) AddMeal(c *gin.Context) {
	req, err := BindJSON[dto.AddMealRequest](c, true)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	after := -1
	if req.After != nil {
		after = *req.After
	}
	state, err := h.planner.AddMeal(c.Request.Context(), planParam(c), after)
	respondState(c, state, err)
}

// RemoveMeal handles DELETE /api/planner/plans/{planId}/meals/{meal}.
// The last meal of a plan is kept.
//
// @Summary  Remove a meal
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal} [delete]
func (h *PlannerHandler) RemoveMeal(c *gin.Context) {
	withMeal(c, func(meal int) {
		state, err := h.planner.RemoveMeal(c.Request.Context(), planParam(c), meal)
		respondState(c, state, err)
	})
}

// DuplicateMeal handles POST /api/planner/plans/{planId}/meals/{meal}/duplicate.
//
// @Summary  Duplicate a meal
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal}/duplicate [post]
func (h *PlannerHandler) DuplicateMeal(c *gin.Context) {
	withMeal(c, func(meal int) {
		state, err := h.planner.DuplicateMeal(c.Request.Context(), planParam(c), meal)
		respondState(c, state, err)
	})
}

// RenameMeal handles PUT /api/planner/plans/{planId}/meals/{meal}/name.
//
// @Summary  Rename a meal
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Param    request body dto.RenameRequest true "New name"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  400 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal}/name [put]
func (h *PlannerHandler) RenameMeal(c *gin.Context) {
	withMeal(c, func(meal int) {
		req, err := BindJSON[dto.RenameRequest](c, false)
		if err != nil {
			NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidName, err)
			return
		}
		state, err := h.planner.RenameMeal(c.Request.Context(), planParam(c), meal, req.Name)
		respondState(c, state, err)
	})
}

// SetMealPriority handles PUT /api/planner/plans/{planId}/meals/{meal}/priority.
//
// @Summary  Set a meal's auto-balance priority
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Param    request body dto.PriorityRequest true "Priority macro"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal}/priority [put]
func (h *PlannerHandler) SetMealPriority(c *gin.Context) {
	withMeal(c, func(meal int) {
		req, err := BindJSON[dto.PriorityRequest](c, false)
		if err != nil {
			NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
			return
		}
		state, err := h.planner.SetMealPriority(c.Request.Context(), planParam(c), meal, req.Priority)
		respondState(c, state, err)
	})
}

// AutoBalance handles POST /api/planner/plans/{planId}/meals/{meal}/balance.
//
// @Summary      Auto-balance a meal
// @Description  Rescales unlocked items so the priority macro meets the target left after locked items. Without a target the plan profile is split evenly across meals.
// @Tags         Planner
// @Accept       json
// @Produce      json
// @Param        planId path string true "Plan id or active"
// @Param        meal path int true "Meal index"
// @Param        request body dto.BalanceRequest false "Target and priority"
// @Success      200 {object} dto.SuccessResponse{data=service.BalanceResult}
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /api/planner/plans/{planId}/meals/{meal}/balance [post]
func (h *PlannerHandler) AutoBalance(c *gin.Context) {
	withMeal(c, func(meal int) {
		builder := NewResponseBuilder(c)
		req, err := BindJSON[dto.BalanceRequest](c, true)
		if err != nil {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
			return
		}
		result, err := h.planner.AutoBalance(c.Request.Context(), planParam(c), meal, service.BalanceRequest{
			Target:   req.Target,
			Priority: req.Priority,
		})
		if err != nil {
			builder.Fail(err)
			return
		}
		audit(c, middleware.ActionAutoBalance, "planner", "Meal auto-balanced", map[string]interface{}{
			"meal":     meal,
			"priority": string(result.Priority),
			"outcome":  string(result.Outcome),
		})
		builder.SuccessOK(result)
	})
}

// AddItem handles POST /api/planner/plans/{planId}/meals/{meal}/items.
//
// @Summary      Add an item
// @Description  Adds the first catalog product at one serving.
// @Tags         Planner
// @Produce      json
// @Param        planId path string true "Plan id or active"
// @Param        meal path int true "Meal index"
// @Success      200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure      409 {object} dto.ErrorResponse "Catalog is empty"
// @Router       /api/planner/plans/{planId}/meals/{meal}/items [post]
func (h *PlannerHandler) AddItem(c *gin.Context) {
	withMeal(c, func(meal int) {
		state, err := h.planner.AddItem(c.Request.Context(), planParam(c), meal)
		respondState(c, state, err)
	})
}

// UpdateItem handles PATCH /api/planner/plans/{planId}/meals/{meal}/items/{itemId}.
//
// @Summary  Update an item
// @Tags     Planner
// @Accept   json
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Param    itemId path string true "Item id"
// @Param    request body model.ItemPatch true "Fields to change"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal}/items/{itemId} [patch]
func (h *PlannerHandler) UpdateItem(c *gin.Context) {
	withMeal(c, func(meal int) {
		patch, err := BindJSON[model.ItemPatch](c, false)
		if err != nil {
			NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
			return
		}
		state, err := h.planner.UpdateItem(c.Request.Context(), planParam(c), meal, model.ID(c.Param("itemId")), *patch)
		respondState(c, state, err)
	})
}

// RemoveItem handles DELETE /api/planner/plans/{planId}/meals/{meal}/items/{itemId}.
//
// @Summary  Remove an item
// @Tags     Planner
// @Produce  json
// @Param    planId path string true "Plan id or active"
// @Param    meal path int true "Meal index"
// @Param    itemId path string true "Item id"
// @Success  200 {object} dto.SuccessResponse{data=model.PlannerState}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/planner/plans/{planId}/meals/{meal}/items/{itemId} [delete]
func (h *PlannerHandler) RemoveItem(c *gin.Context) {
	withMeal(c, func(meal int) {
		state, err := h.planner.RemoveItem(c.Request.Context(), planParam(c), meal, model.ID(c.Param("itemId")))
		respondState(c, state, err)
	})
}
