package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/commands"
	"github.com/sia-robotics/sia-server/internal/robots"
)

// FleetHandler serves the HTTP fallback robots use when they cannot
// hold a websocket open: pushing sensor snapshots and polling for
// commands. Routes are keyed by robot identifier, not database id,
// because that is what firmware knows.
type FleetHandler struct {
	robotService   *robots.Service
	commandService *commands.Service
}

func NewFleetHandler(robotService *robots.Service, commandService *commands.Service) *FleetHandler {
	return &FleetHandler{robotService: robotService, commandService: commandService}
}

func (h *FleetHandler) PushStatus(c *gin.Context) {
	robot, ok := h.resolve(c)
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.robotService.ApplyStatus(c.Request.Context(), robot.ID, req.Sensors)
	if err != nil {
		slog.Error("Failed to apply robot status", "robot", robot.Identifier, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.StatusUpdateResponse{Identifier: robot.Identifier, Status: status})
}

// PollCommands hands the robot its pending commands and marks them
// executed in the same transaction, so a command is delivered once.
func (h *FleetHandler) PollCommands(c *gin.Context) {
	robot, ok := h.resolve(c)
	if !ok {
		return
	}

	list, err := h.commandService.Consume(c.Request.Context(), robot.ID)
	if err != nil {
		slog.Error("Failed to consume commands", "robot", robot.Identifier, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewCommandResponses(list))
}

// resolve loads the robot named in the path and checks it against the
// credential the request authenticated with.
func (h *FleetHandler) resolve(c *gin.Context) (*robots.Robot, bool) {
	identifier := c.Param("identifier")

	if claimed, ok := c.Get("robot_identifier"); ok {
		if claimed.(string) != identifier {
			c.JSON(http.StatusForbidden, gin.H{"error": "credential does not match robot"})
			return nil, false
		}
	}

	robot, err := h.robotService.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, robots.ErrRobotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "robot not found"})
			return nil, false
		}
		slog.Error("Failed to resolve robot", "robot", identifier, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	if !robot.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "robot disabled"})
		return nil, false
	}
	return robot, true
}
