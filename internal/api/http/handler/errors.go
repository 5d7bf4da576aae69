package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/errorlog"
)

type ErrorLogHandler struct {
	errorService *errorlog.Service
}

func NewErrorLogHandler(errorService *errorlog.Service) *ErrorLogHandler {
	return &ErrorLogHandler{errorService: errorService}
}

func (h *ErrorLogHandler) Report(c *gin.Context) {
	var req dto.ReportErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.errorService.Append(c.Request.Context(), req.RobotID, req.Origin, req.Message)
	if err != nil {
		slog.Error("Failed to record error entry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record error"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewErrorEntryResponse(entry))
}

func (h *ErrorLogHandler) List(c *gin.Context) {
	filter := errorlog.Filter{RobotID: c.Query("robo_id")}
	if raw := c.Query("de"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = t
		}
	}
	if raw := c.Query("ate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = t
		}
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "200"))

	list, err := h.errorService.List(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Failed to list error entries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.ErrorEntryResponse, len(list))
	for i := range list {
		responses[i] = dto.NewErrorEntryResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}
