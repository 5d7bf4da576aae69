package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/trajectories"
)

type TrajectoryHandler struct {
	trajectoryService *trajectories.Service
}

func NewTrajectoryHandler(trajectoryService *trajectories.Service) *TrajectoryHandler {
	return &TrajectoryHandler{trajectoryService: trajectoryService}
}

// ListByLocation answers "which runs passed through this address".
func (h *TrajectoryHandler) ListByLocation(c *gin.Context) {
	code := c.Query("codigo_localizacao")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codigo_localizacao is required"})
		return
	}

	list, err := h.trajectoryService.ListByLocation(c.Request.Context(), code)
	if err != nil {
		slog.Error("Failed to list trajectories by location", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.TrajectoryResponse, len(list))
	for i := range list {
		responses[i] = dto.NewTrajectoryResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *TrajectoryHandler) AddPoint(c *gin.Context) {
	var req dto.AddPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point, err := h.trajectoryService.AddPoint(c.Request.Context(), c.Param("id"), req.Code, req.Kind, req.Payload, req.RecordedAt)
	if err != nil {
		if errors.Is(err, trajectories.ErrTrajectoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trajectory not found"})
			return
		}
		slog.Error("Failed to add trajectory point", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.NewPointResponse(point))
}

func (h *TrajectoryHandler) Points(c *gin.Context) {
	list, err := h.trajectoryService.Points(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to list trajectory points", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.PointResponse, len(list))
	for i := range list {
		responses[i] = dto.NewPointResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}
