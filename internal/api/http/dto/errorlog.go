package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/errorlog"
)

type ReportErrorRequest struct {
	RobotID string `json:"robo_id"`
	Origin  string `json:"origem"`
	Message string `json:"mensagem" binding:"required"`
}

type ErrorEntryResponse struct {
	ID        string `json:"id"`
	RobotID   string `json:"robo_id,omitempty"`
	Origin    string `json:"origem"`
	Message   string `json:"mensagem"`
	CreatedAt string `json:"criado_em"`
}

func NewErrorEntryResponse(e *errorlog.Entry) ErrorEntryResponse {
	return ErrorEntryResponse{
		ID:        e.ID,
		RobotID:   e.RobotID,
		Origin:    e.Origin,
		Message:   e.Message,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
