package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/guttosm/macro-service/internal/share"
)

// ShareHandler serves share links and the first-run session.
type ShareHandler struct {
	share   service.ShareService
	session service.SessionService
}

// NewShareHandler creates a ShareHandler.
func NewShareHandler(share service.ShareService, session service.SessionService) *ShareHandler {
	return &ShareHandler{share: share, session: session}
}

// RegisterRoutes mounts /share and /session.
func (h *ShareHandler) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	g := rg.Group("/share")
	g.POST("/link", h.Link)
	g.POST("/preview", h.Preview)
	g.POST("/import", h.Import)

	s := rg.Group("/session")
	s.GET("", h.SessionStatus)
	s.POST("/start", h.StartSession)
}

// shareFailure answers a rejected link. The address without its payload
// is echoed back so the client can clean up its location bar.
func shareFailure(c *gin.Context, req *dto.SharePayloadRequest, err error) {
	builder := NewResponseBuilder(c)
	if req.URL == "" {
		builder.Fail(err)
		return
	}
	builder.FailWithDetails(err, map[string]string{"address": share.StripParam(req.URL)})
}

// Link handles POST /api/share/link.
//
// @Summary      Build a share link
// @Description  Encodes every product and plan into a compressed link payload.
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        request body dto.ShareLinkRequest false "Base address"
// @Success      200 {object} dto.SuccessResponse{data=service.ShareLink}
// @Router       /api/share/link [post]
func (h *ShareHandler) Link(c *gin.Context) {
	builder := NewResponseBuilder(c)
	req, err := BindJSON[dto.ShareLinkRequest](c, true)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	link, err := h.share.Link(c.Request.Context(), req.BaseURL)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(link)
}

// Preview handles POST /api/share/preview.
//
// @Summary  Describe a share link without applying it
// @Tags     Share
// @Accept   json
// @Produce  json
// @Param    request body dto.SharePayloadRequest true "Payload or link"
// @Success  200 {object} dto.SuccessResponse{data=service.SharePreview}
// @Failure  400 {object} dto.ErrorResponse
// @Router   /api/share/preview [post]
func (h *ShareHandler) Preview(c *gin.Context) {
	req, err := BindJSON[dto.SharePayloadRequest](c, false)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	payload, err := req.Resolve(share.Param)
	if err != nil {
		shareFailure(c, req, err)
		return
	}
	preview, err := h.share.Preview(c.Request.Context(), payload)
	if err != nil {
		shareFailure(c, req, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(preview)
}

// Import handles POST /api/share/import.
//
// @Summary      Apply a share link
// @Description  Replaces the catalog when the link carries products and the plans when it carries plans.
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body dto.SharePayloadRequest true "Payload or link"
// @Success      200 {object} dto.SuccessResponse{data=service.ShareImport}
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/share/import [post]
func (h *ShareHandler) Import(c *gin.Context) {
	req, err := BindJSON[dto.SharePayloadRequest](c, false)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	payload, err := req.Resolve(share.Param)
	if err != nil {
		shareFailure(c, req, err)
		return
	}
	result, err := h.share.Import(c.Request.Context(), payload)
	if err != nil {
		auditError(c, middleware.ActionShareImport, "share", "Share link rejected", err)
		shareFailure(c, req, err)
		return
	}
	audit(c, middleware.ActionShareImport, "share", "Share link imported", map[string]interface{}{
		"products": len(result.Products),
		"plans":    len(result.State.Plans),
	})
	NewResponseBuilder(c).SuccessWithMessage(result, i18n.SuccessKeyShareImported)
}

// SessionStatus handles GET /api/session.
//
// @Summary  First-run status
// @Tags     Session
// @Produce  json
// @Success  200 {object} dto.SuccessResponse{data=service.SessionStatus}
// @Router   /api/session [get]
func (h *ShareHandler) SessionStatus(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(h.session.Status(c.Request.Context()))
}

// StartSession handles POST /api/session/start.
//
// @Summary      Apply the first-run choice
// @Description  fresh keeps the workspace, preset loads the starter plans, import applies a share payload.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request body dto.SessionStartRequest true "Choice"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionResult}
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/session/start [post]
func (h *ShareHandler) StartSession(c *gin.Context) {
	builder := NewResponseBuilder(c)
	req, err := BindJSON[dto.SessionStartRequest](c, false)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	result, err := h.session.Start(c.Request.Context(), service.SessionMode(req.Mode), req.Payload)
	if err != nil {
		builder.Fail(err)
		return
	}
	audit(c, middleware.ActionSessionStart, "session", "Session started", map[string]interface{}{"mode": req.Mode})
	builder.SuccessOK(result)
}
