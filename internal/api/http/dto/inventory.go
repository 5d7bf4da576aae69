package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/inventory"
)

type RecordItemRequest struct {
	PalletCode  string `json:"codigo_pallet" binding:"required"`
	AddressCode string `json:"codigo_endereco" binding:"required"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	ScheduleID  string `json:"agendamento_id"`
	PalletCode  string `json:"codigo_pallet"`
	AddressCode string `json:"codigo_endereco"`
	RecordedAt  string `json:"registrado_em"`
}

func NewItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		ScheduleID:  item.ScheduleID,
		PalletCode:  item.PalletCode,
		AddressCode: item.AddressCode,
		RecordedAt:  item.RecordedAt.Format(time.RFC3339),
	}
}
