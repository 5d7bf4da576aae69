package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/commands"
	"github.com/sia-robotics/sia-server/internal/robots"
)

type CreateRobotRequest struct {
	Identifier  string         `json:"identificador" binding:"required"`
	WarehouseID string         `json:"galpao_id" binding:"required,uuid"`
	Model       string         `json:"modelo" binding:"required"`
	Config      map[string]any `json:"configuracao"`
}

type UpdateRobotRequest struct {
	Status  *string        `json:"status"`
	Enabled *bool          `json:"habilitado"`
	Config  map[string]any `json:"configuracao"`
}

type RobotResponse struct {
	ID          string         `json:"id"`
	Identifier  string         `json:"identificador"`
	WarehouseID string         `json:"galpao_id"`
	Model       string         `json:"modelo"`
	Status      string         `json:"status"`
	Enabled     bool           `json:"habilitado"`
	Sensors     map[string]any `json:"sensores"`
	Config      map[string]any `json:"configuracao"`
	LastContact string         `json:"ultimo_contato,omitempty"`
}

func NewRobotResponse(r *robots.Robot) RobotResponse {
	resp := RobotResponse{
		ID:          r.ID,
		Identifier:  r.Identifier,
		WarehouseID: r.WarehouseID,
		Model:       r.Model,
		Status:      r.Status,
		Enabled:     r.Enabled,
		Sensors:     r.Sensors,
		Config:      r.Config,
	}
	if !r.LastContact.IsZero() {
		resp.LastContact = r.LastContact.Format(time.RFC3339)
	}
	return resp
}

type RobotTokenResponse struct {
	RobotID    string `json:"robo_id"`
	Identifier string `json:"identificador"`
	Token      string `json:"token"`
}

type StatusUpdateRequest struct {
	Sensors map[string]any `json:"sensores" binding:"required"`
}

type StatusUpdateResponse struct {
	Identifier string `json:"identificador"`
	Status     string `json:"status"`
}

type IssueCommandRequest struct {
	Kind string `json:"comando" binding:"required"`
}

type CommandResponse struct {
	ID         string `json:"id"`
	RobotID    string `json:"robo_id"`
	Kind       string `json:"comando"`
	IssuedBy   string `json:"emitido_por,omitempty"`
	Executed   bool   `json:"executado"`
	CreatedAt  string `json:"criado_em"`
	ExecutedAt string `json:"executado_em,omitempty"`
}

func NewCommandResponse(cmd *commands.Command) CommandResponse {
	resp := CommandResponse{
		ID:        cmd.ID,
		RobotID:   cmd.RobotID,
		Kind:      cmd.Kind,
		IssuedBy:  cmd.IssuedBy,
		Executed:  cmd.Executed,
		CreatedAt: cmd.CreatedAt.Format(time.RFC3339),
	}
	if cmd.ExecutedAt != nil {
		resp.ExecutedAt = cmd.ExecutedAt.Format(time.RFC3339)
	}
	return resp
}

func NewCommandResponses(cmds []commands.Command) []CommandResponse {
	out := make([]CommandResponse, len(cmds))
	for i := range cmds {
		out[i] = NewCommandResponse(&cmds[i])
	}
	return out
}
