package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/wms"
)

type WMSHandler struct {
	wmsService *wms.Service
}

func NewWMSHandler(wmsService *wms.Service) *WMSHandler {
	return &WMSHandler{wmsService: wmsService}
}

// Webhook ingests one pallet notification from the external WMS. The
// caller authenticates with a provisioned API token, not a user JWT.
func (h *WMSHandler) Webhook(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing api token"})
		return
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if err := h.wmsService.Authorize(c.Request.Context(), token); err != nil {
		if errors.Is(err, wms.ErrTokenInvalid) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired api token"})
			return
		}
		slog.Error("Failed to authorize wms token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.wmsService.ProcessWebhook(c.Request.Context(), req.PalletCode)
	if err != nil {
		slog.Error("Failed to process wms webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Verified:   result.Verified,
		Divergence: result.Divergence,
	})
}

func (h *WMSHandler) CreateToken(c *gin.Context) {
	var req dto.CreateWMSTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.wmsService.CreateToken(c.Request.Context(), req.Token, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, wms.ErrTokenExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "api token already registered"})
			return
		}
		slog.Error("Failed to create wms token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewWMSTokenResponse(token))
}

func (h *WMSHandler) ListChecklists(c *gin.Context) {
	filter := wms.ChecklistFilter{
		Reference: c.Query("referencia"),
		Entity:    c.Query("entidade"),
	}
	if raw := c.Query("divergente"); raw != "" {
		divergent, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "divergente must be a boolean"})
			return
		}
		filter.Divergent = &divergent
	}

	list, err := h.wmsService.ListChecklists(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Failed to list wms checklists", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.ChecklistResponse, len(list))
	for i := range list {
		responses[i] = dto.NewChecklistResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}
