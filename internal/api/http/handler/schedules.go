package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/inventory"
	"github.com/sia-robotics/sia-server/internal/robots"
	"github.com/sia-robotics/sia-server/internal/schedules"
	"github.com/sia-robotics/sia-server/internal/trajectories"
)

type ScheduleHandler struct {
	scheduleService   *schedules.Service
	trajectoryService *trajectories.Service
	inventoryService  *inventory.Service
}

func NewScheduleHandler(scheduleService *schedules.Service, trajectoryService *trajectories.Service, inventoryService *inventory.Service) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService:   scheduleService,
		trajectoryService: trajectoryService,
		inventoryService:  inventoryService,
	}
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("user_id")
	schedule, err := h.scheduleService.Create(c.Request.Context(), schedules.CreateParams{
		RobotID:     req.RobotID,
		WarehouseID: req.WarehouseID,
		UserID:      userID.(string),
		Kind:        req.Kind,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Description: req.Description,
		Cities:      req.Cities,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		case errors.Is(err, schedules.ErrScheduleConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "robot already scheduled in this period"})
		case errors.Is(err, schedules.ErrRobotWarehouse):
			c.JSON(http.StatusBadRequest, gin.H{"error": "robot does not belong to this warehouse"})
		case errors.Is(err, robots.ErrRobotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
		default:
			slog.Error("Failed to create schedule", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create schedule"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.scheduleService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		slog.Error("Failed to get schedule", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) List(c *gin.Context) {
	list, err := h.scheduleService.List(c.Request.Context(), schedules.ListFilter{
		WarehouseID: c.Query("galpao_id"),
		RobotID:     c.Query("robo_id"),
		Status:      c.Query("status"),
	})
	if err != nil {
		slog.Error("Failed to list schedules", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.ScheduleResponse, len(list))
	for i := range list {
		responses[i] = dto.NewScheduleResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.scheduleService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		slog.Error("Failed to update schedule status", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NewScheduleResponse(schedule))
}

// Cancel soft deletes the schedule, keeping who cancelled it.
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	userID, _ := c.Get("user_id")
	if err := h.scheduleService.Cancel(c.Request.Context(), c.Param("id"), userID.(string)); err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		slog.Error("Failed to cancel schedule", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) Notify(c *gin.Context) {
	var req dto.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := h.scheduleService.Notify(c.Request.Context(), c.Param("id"), req.Message, req.Kind)
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		slog.Error("Failed to create notification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewNotificationResponse(notification))
}

func (h *ScheduleHandler) Notifications(c *gin.Context) {
	list, err := h.scheduleService.Notifications(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to list notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.NotificationResponse, len(list))
	for i := range list {
		responses[i] = dto.NewNotificationResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ScheduleHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.scheduleService.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, schedules.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		slog.Error("Failed to mark notification read", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) RecordTrajectory(c *gin.Context) {
	var req dto.RecordTrajectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trajectory, err := h.trajectoryService.Record(c.Request.Context(), c.Param("id"), req.LocationCode, req.Sensors)
	if err != nil {
		slog.Error("Failed to record trajectory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record trajectory"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewTrajectoryResponse(trajectory))
}

func (h *ScheduleHandler) Trajectories(c *gin.Context) {
	list, err := h.trajectoryService.ListBySchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to list trajectories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.TrajectoryResponse, len(list))
	for i := range list {
		responses[i] = dto.NewTrajectoryResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ScheduleHandler) RecordItem(c *gin.Context) {
	var req dto.RecordItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Record(c.Request.Context(), c.Param("id"), req.PalletCode, req.AddressCode)
	if err != nil {
		slog.Error("Failed to record inventory item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record item"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewItemResponse(item))
}

func (h *ScheduleHandler) Items(c *gin.Context) {
	list, err := h.inventoryService.ListBySchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to list inventory items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.ItemResponse, len(list))
	for i := range list {
		responses[i] = dto.NewItemResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}
