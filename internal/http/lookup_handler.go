package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/lookup"
	"github.com/guttosm/macro-service/internal/service"
)

// LookupHandler finds products to import, either in the food database or
// by parsing pasted label text.
type LookupHandler struct {
	searcher lookup.Searcher
}

// NewLookupHandler creates a LookupHandler. A nil searcher disables the
// food database route.
func NewLookupHandler(searcher lookup.Searcher) *LookupHandler {
	return &LookupHandler{searcher: searcher}
}

// RegisterRoutes mounts /lookup and /labels.
func (h *LookupHandler) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	if h.searcher != nil {
		g := rg.Group("/lookup")
		if cfg != nil && cfg.lookupLimiter != nil {
			g.Use(cfg.lookupLimiter.RateLimitScoped("lookup"))
		}
		g.GET("/products", h.Search)
	}
	rg.POST("/labels/parse", h.ParseLabel)
}

// Search handles GET /api/lookup/products.
//
// @Summary      Search the food database
// @Description  Returns previews per 100 g. Import one through POST /api/products/import.
// @Tags         Lookup
// @Produce      json
// @Param        q query string true "Search text"
// @Success      200 {object} dto.SuccessResponse{data=[]lookup.Candidate}
// @Failure      429 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Router       /api/lookup/products [get]
func (h *LookupHandler) Search(c *gin.Context) {
	builder := NewResponseBuilder(c)
	candidates, err := h.searcher.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(candidates)
}

// ParseLabel handles POST /api/labels/parse.
//
// @Summary      Parse nutrition label text
// @Description  Recognizes English, EU and Japanese keywords. Missing values are zero.
// @Tags         Lookup
// @Accept       json
// @Produce      json
// @Param        request body dto.LabelRequest true "Label text"
// @Success      200 {object} dto.SuccessResponse{data=model.Product}
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/labels/parse [post]
func (h *LookupHandler) ParseLabel(c *gin.Context) {
	builder := NewResponseBuilder(c)
	req, err := BindJSON[dto.LabelRequest](c, false)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyEmptyLabel, err)
		return
	}
	p, err := service.ParseLabel(req.Text)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(p)
}
