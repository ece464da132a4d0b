package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
)

// maxImportBytes caps uploaded documents.
const maxImportBytes = 8 << 20

// TransferHandler serves file export and import.
type TransferHandler struct {
	transfer service.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(transfer service.TransferService) *TransferHandler {
	return &TransferHandler{transfer: transfer}
}

// RegisterRoutes mounts /transfer.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	g := rg.Group("/transfer")
	g.GET("/:kind", h.Export)
	g.POST("/:kind", h.Import)
}

// Export handles GET /api/transfer/{kind}.
//
// @Summary  Download products, plans or a full backup
// @Tags     Transfer
// @Produce  json
// @Param    kind path string true "Document kind" Enums(products, planner, backup)
// @Success  200 {file} file
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/transfer/{kind} [get]
func (h *TransferHandler) Export(c *gin.Context) {
	builder := NewResponseBuilder(c)
	kind, err := service.ParseTransferKind(c.Param("kind"))
	if err != nil {
		builder.Fail(err)
		return
	}
	doc, err := h.transfer.Export(c.Request.Context(), kind)
	if err != nil {
		builder.Fail(err)
		return
	}
	body, err := MarshalIndent(doc)
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.Filename()))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Import handles POST /api/transfer/{kind}. The document is the raw body
// or a multipart "file" field. A rejected document leaves the workspace
// untouched.
//
// @Summary  Upload products, plans or a full backup
// @Tags     Transfer
// @Accept   json,mpfd
// @Produce  json
// @Param    kind path string true "Document kind" Enums(products, planner, backup)
// @Param    file formData file false "Document"
// @Success  200 {object} dto.SuccessResponse{data=service.ImportSummary}
// @Failure  400 {object} dto.ErrorResponse
// @Failure  404 {object} dto.ErrorResponse
// @Router   /api/transfer/{kind} [post]
func (h *TransferHandler) Import(c *gin.Context) {
	builder := NewResponseBuilder(c)
	kind, err := service.ParseTransferKind(c.Param("kind"))
	if err != nil {
		builder.Fail(err)
		return
	}
	data, err := readDocument(c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	summary, err := h.transfer.Import(c.Request.Context(), kind, data)
	if err != nil {
		auditError(c, middleware.ActionFileImport, "transfer", "File import rejected", err)
		builder.Fail(err)
		return
	}
	audit(c, middleware.ActionFileImport, "transfer", "File imported", map[string]interface{}{
		"kind":     string(summary.Kind),
		"products": summary.Products,
		"plans":    summary.Plans,
	})
	builder.SuccessWithMessage(summary, i18n.SuccessKeyFileImported)
}

func readDocument(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		return io.ReadAll(io.LimitReader(f, maxImportBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
}
