package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/images"
)

type ImageHandler struct {
	imageService *images.Service
}

func NewImageHandler(imageService *images.Service) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// LogProcessing records the outcome of decoding one captured image.
func (h *ImageHandler) LogProcessing(c *gin.Context) {
	var req dto.LogProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.imageService.LogProcessing(c.Request.Context(), c.Param("id"), req.Status, req.Details)
	if err != nil {
		if errors.Is(err, images.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		slog.Error("Failed to log image processing", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.NewProcessingLogResponse(entry))
}
