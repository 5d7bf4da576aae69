package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/commands"
	"github.com/sia-robotics/sia-server/internal/images"
	"github.com/sia-robotics/sia-server/internal/robots"
)

type RobotHandler struct {
	robotService   *robots.Service
	commandService *commands.Service
	imageService   *images.Service
	authConfig     auth.Config
}

func NewRobotHandler(robotService *robots.Service, commandService *commands.Service, imageService *images.Service, authConfig auth.Config) *RobotHandler {
	return &RobotHandler{
		robotService:   robotService,
		commandService: commandService,
		imageService:   imageService,
		authConfig:     authConfig,
	}
}

func (h *RobotHandler) Create(c *gin.Context) {
	var req dto.CreateRobotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	robot, err := h.robotService.Create(c.Request.Context(), robots.CreateParams{
		Identifier:  req.Identifier,
		WarehouseID: req.WarehouseID,
		Model:       req.Model,
		Config:      req.Config,
	})
	if err != nil {
		if errors.Is(err, robots.ErrDuplicateIdentifier) {
			c.JSON(http.StatusConflict, gin.H{"error": "robot identifier already in use"})
			return
		}
		slog.Error("Failed to create robot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create robot"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewRobotResponse(robot))
}

func (h *RobotHandler) Get(c *gin.Context) {
	robot, err := h.robotService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, robots.ErrRobotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
			return
		}
		slog.Error("Failed to get robot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewRobotResponse(robot))
}

func (h *RobotHandler) List(c *gin.Context) {
	list, err := h.robotService.List(c.Request.Context(), c.Query("galpao_id"))
	if err != nil {
		slog.Error("Failed to list robots", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.RobotResponse, len(list))
	for i := range list {
		responses[i] = dto.NewRobotResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *RobotHandler) Update(c *gin.Context) {
	var req dto.UpdateRobotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	robot, err := h.robotService.Update(c.Request.Context(), c.Param("id"), robots.UpdateParams{
		Status:  req.Status,
		Enabled: req.Enabled,
		Config:  req.Config,
	})
	if err != nil {
		switch {
		case errors.Is(err, robots.ErrRobotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
		case errors.Is(err, robots.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid robot status"})
		default:
			slog.Error("Failed to update robot", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewRobotResponse(robot))
}

// MintToken issues the credential provisioned into a robot's firmware.
// The token never expires; revocation is done by disabling the robot.
func (h *RobotHandler) MintToken(c *gin.Context) {
	robot, err := h.robotService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, robots.ErrRobotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
			return
		}
		slog.Error("Failed to load robot for token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, err := auth.GenerateRobotToken(h.authConfig, robot.ID, robot.Identifier)
	if err != nil {
		slog.Error("Failed to mint robot token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, dto.RobotTokenResponse{
		RobotID:    robot.ID,
		Identifier: robot.Identifier,
		Token:      token,
	})
}

// IssueCommand records a command and pushes it to every live connection
// the robot holds. A robot that is offline picks it up later over the
// polling endpoint.
func (h *RobotHandler) IssueCommand(c *gin.Context) {
	var req dto.IssueCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("user_id")
	command, err := h.commandService.Issue(c.Request.Context(), c.Param("id"), req.Kind, userID.(string))
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidKind):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command kind"})
		case errors.Is(err, robots.ErrRobotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
		default:
			slog.Error("Failed to issue command", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.NewCommandResponse(command))
}

// PendingCommands lists not-yet-executed commands without consuming
// them. The robot-facing polling endpoint is the one that consumes.
func (h *RobotHandler) PendingCommands(c *gin.Context) {
	list, err := h.commandService.Pending(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to list pending commands", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewCommandResponses(list))
}

func (h *RobotHandler) CommandHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.commandService.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		slog.Error("Failed to list command history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewCommandResponses(list))
}

func (h *RobotHandler) RecordImage(c *gin.Context) {
	var req dto.RecordImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.imageService.Record(c.Request.Context(), c.Param("id"), req.ImageURL, req.DecodedCode)
	if err != nil {
		slog.Error("Failed to record image", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record image"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewImageResponse(image))
}

func (h *RobotHandler) ListImages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.imageService.ListByRobot(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		slog.Error("Failed to list images", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.ImageResponse, len(list))
	for i := range list {
		responses[i] = dto.NewImageResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}
