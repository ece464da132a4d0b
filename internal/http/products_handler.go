package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	products service.ProductService
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes mounts /products.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	g := rg.Group("/products")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/starter", h.LoadStarter)
	g.POST("/sort", h.Sort)
	g.POST("/import", h.Import)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.POST("/:id/duplicate", h.Duplicate)
	g.DELETE("/:id", h.Remove)
}

// List handles GET /api/products.
//
// @Summary  List products
// @Tags     Products
// @Produce  json
// @Success  200 {object} dto.SuccessResponse{data=[]model.Product}
// @Router   /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(h.products.List(c.Request.Context()))
}

// Get handles GET /api/products/{id}.
//
// @Summary  Get a product
// @Tags     Products
// @Produce  json
// @Param    id path string true "Product id"
// @Success  200 {object} dto.SuccessResponse{data=model.Product}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	builder := NewResponseBuilder(c)
	p, err := h.products.Get(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(p)
}

// Create handles POST /api/products. Omitted fields take the "New Product"
// defaults of 100 g and zero macros.
//
// @Summary  Create a product
// @Tags     Products
// @Accept   json
// @Produce  json
// @Param    Idempotency-Key header string false "Replay protection key"
// @Param    request body model.ProductPatch false "Initial values"
// @Success  201 {object} dto.SuccessResponse{data=model.Product}
// @Failure  400 {object} dto.ErrorResponse
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	builder := NewResponseBuilder(c)
	patch, err := BindJSON[model.ProductPatch](c, true)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	p, err := h.products.Create(c.Request.Context(), *patch)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(p)
}

// Update handles PATCH /api/products/{id}.
//
// @Summary  Update a product
// @Tags     Products
// @Accept   json
// @Produce  json
// @Param    id path string true "Product id"
// @Param    request body model.ProductPatch true "Fields to change"
// @Success  200 {object} dto.SuccessResponse{data=model.Product}
// @Failure  404 {object} dto.ErrorResponse
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	builder := NewResponseBuilder(c)
	patch, err := BindJSON[model.ProductPatch](c, false)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	p, err := h.products.Update(c.Request.Context(), model.ID(c.Param("id")), *patch)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(p)
}

// Duplicate handles POST /api/products/{id}/duplicate.
//
// @Summary  Duplicate a product
// @Tags     Products
// @Produce  json
// @Param    id path string true "Product id"
// @Success  201 {object} dto.SuccessResponse{data=model.Product}
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/products/{id}/duplicate [post]
func (h *ProductHandler) Duplicate(c *gin.Context) {
	builder := NewResponseBuilder(c)
	p, err := h.products.Duplicate(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(p)
}

// Remove handles DELETE /api/products/{id}. Items that reference the
// product keep the id and count as zero.
//
// @Summary  Remove a product
// @Tags     Products
// @Param    id path string true "Product id"
// @Success  204
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/products/{id} [delete]
func (h *ProductHandler) Remove(c *gin.Context) {
	id := model.ID(c.Param("id"))
	if err := h.products.Remove(c.Request.Context(), id); err != nil {
		NewResponseBuilder(c).Fail(err)
		return
	}
	audit(c, middleware.ActionProductRemove, "products", "Product removed", map[string]interface{}{"product_id": string(id)})
	c.Status(http.StatusNoContent)
}

// LoadStarter handles POST /api/products/starter.
//
// @Summary  Replace the catalog with the starter products
// @Tags     Products
// @Produce  json
// @Success  200 {object} dto.SuccessResponse{data=[]model.Product}
// @Router   /api/products/starter [post]
func (h *ProductHandler) LoadStarter(c *gin.Context) {
	builder := NewResponseBuilder(c)
	products, err := h.products.LoadStarter(c.Request.Context())
	if err != nil {
		builder.Fail(err)
		return
	}
	audit(c, middleware.ActionStarterLoad, "products", "Starter products loaded", map[string]interface{}{"products": len(products)})
	builder.SuccessOK(products)
}

// Sort handles POST /api/products/sort and stores the new order.
//
// @Summary  Sort the catalog
// @Tags     Products
// @Accept   json
// @Produce  json
// @Param    request body dto.SortRequest true "Sort key"
// @Success  200 {object} dto.SuccessResponse{data=[]model.Product}
// @Failure  400 {object} dto.ErrorResponse
// @Router   /api/products/sort [post]
func (h *ProductHandler) Sort(c *gin.Context) {
	builder := NewResponseBuilder(c)
	req, err := BindJSON[dto.SortRequest](c, false)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	products, err := h.products.Sort(c.Request.Context(), req.Key)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(products)
}

// Import handles POST /api/products/import, adding a previewed product
// from a lookup or a parsed label under a fresh id.
//
// @Summary  Import a previewed product
// @Tags     Products
// @Accept   json
// @Produce  json
// @Param    request body model.Product true "Product preview"
// @Success  201 {object} dto.SuccessResponse{data=model.Product}
// @Failure  422 {object} dto.ErrorResponse
// @Router   /api/products/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	builder := NewResponseBuilder(c)
	req, err := BindJSON[model.Product](c, false)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	p, err := h.products.Import(c.Request.Context(), *req)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(p)
}
