package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/trajectories"
)

type RecordTrajectoryRequest struct {
	LocationCode string         `json:"codigo_localizacao" binding:"required"`
	Sensors      map[string]any `json:"sensores"`
}

type AddPointRequest struct {
	Code       string         `json:"codigo" binding:"required"`
	Kind       string         `json:"tipo" binding:"required"`
	Payload    map[string]any `json:"dados"`
	RecordedAt time.Time      `json:"registrado_em"`
}

type TrajectoryResponse struct {
	ID           string         `json:"id"`
	ScheduleID   string         `json:"agendamento_id"`
	LocationCode string         `json:"codigo_localizacao"`
	Sensors      map[string]any `json:"sensores,omitempty"`
	RecordedAt   string         `json:"registrado_em"`
}

func NewTrajectoryResponse(t *trajectories.Trajectory) TrajectoryResponse {
	return TrajectoryResponse{
		ID:           t.ID,
		ScheduleID:   t.ScheduleID,
		LocationCode: t.LocationCode,
		Sensors:      t.Sensors,
		RecordedAt:   t.RecordedAt.Format(time.RFC3339),
	}
}

type PointResponse struct {
	ID           string         `json:"id"`
	TrajectoryID string         `json:"trajetoria_id"`
	Code         string         `json:"codigo"`
	Kind         string         `json:"tipo"`
	Payload      map[string]any `json:"dados,omitempty"`
	RecordedAt   string         `json:"registrado_em"`
}

func NewPointResponse(p *trajectories.Point) PointResponse {
	return PointResponse{
		ID:           p.ID,
		TrajectoryID: p.TrajectoryID,
		Code:         p.Code,
		Kind:         p.Kind,
		Payload:      p.Payload,
		RecordedAt:   p.RecordedAt.Format(time.RFC3339),
	}
}
