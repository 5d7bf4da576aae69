package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/schedules"
)

type CreateScheduleRequest struct {
	RobotID     string    `json:"robo_id" binding:"required,uuid"`
	WarehouseID string    `json:"galpao_id" binding:"required,uuid"`
	Kind        string    `json:"tipo" binding:"required"`
	StartsAt    time.Time `json:"data_inicio" binding:"required"`
	EndsAt      time.Time `json:"data_fim" binding:"required"`
	Description string    `json:"descricao"`
	Cities      []string  `json:"cidades"`
}

type UpdateScheduleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ScheduleResponse struct {
	ID          string   `json:"id"`
	RobotID     string   `json:"robo_id"`
	WarehouseID string   `json:"galpao_id"`
	UserID      string   `json:"usuario_id"`
	Status      string   `json:"status"`
	Kind        string   `json:"tipo"`
	StartsAt    string   `json:"data_inicio"`
	EndsAt      string   `json:"data_fim"`
	Description string   `json:"descricao,omitempty"`
	Cities      []string `json:"cidades,omitempty"`
	CreatedAt   string   `json:"criado_em"`
}

func NewScheduleResponse(s *schedules.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:          s.ID,
		RobotID:     s.RobotID,
		WarehouseID: s.WarehouseID,
		UserID:      s.UserID,
		Status:      s.Status,
		Kind:        s.Kind,
		StartsAt:    s.StartsAt.Format(time.RFC3339),
		EndsAt:      s.EndsAt.Format(time.RFC3339),
		Description: s.Description,
		Cities:      s.Cities,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

type NotifyRequest struct {
	Message string `json:"mensagem" binding:"required"`
	Kind    string `json:"tipo"`
}

type NotificationResponse struct {
	ID         string `json:"id"`
	ScheduleID string `json:"agendamento_id"`
	Message    string `json:"mensagem"`
	Kind       string `json:"tipo"`
	Read       bool   `json:"lida"`
	CreatedAt  string `json:"criado_em"`
}

func NewNotificationResponse(n *schedules.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		ScheduleID: n.ScheduleID,
		Message:    n.Message,
		Kind:       n.Kind,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
}
