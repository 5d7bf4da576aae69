package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/wms"
)

type CreateWMSTokenRequest struct {
	Token     string    `json:"token" binding:"required"`
	ExpiresAt time.Time `json:"expiracao" binding:"required"`
}

type WMSTokenResponse struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	Active    bool   `json:"ativo"`
	ExpiresAt string `json:"expiracao"`
	CreatedAt string `json:"criado_em"`
}

func NewWMSTokenResponse(t *wms.Token) WMSTokenResponse {
	return WMSTokenResponse{
		ID:        t.ID,
		Token:     t.Token,
		Active:    t.Active,
		ExpiresAt: t.ExpiresAt.Format(time.RFC3339),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

type WebhookRequest struct {
	PalletCode string `json:"codigo_palete" binding:"required"`
}

type WebhookResponse struct {
	Verified   bool   `json:"verificado"`
	Divergence string `json:"divergencia,omitempty"`
}

type ChecklistResponse struct {
	ID           string `json:"id"`
	Reference    string `json:"referencia_externa"`
	Entity       string `json:"entidade"`
	FoundLocally bool   `json:"encontrado_localmente"`
	Divergence   string `json:"divergencia,omitempty"`
	CreatedAt    string `json:"data_hora"`
}

func NewChecklistResponse(c *wms.Checklist) ChecklistResponse {
	return ChecklistResponse{
		ID:           c.ID,
		Reference:    c.Reference,
		Entity:       c.Entity,
		FoundLocally: c.FoundLocally,
		Divergence:   c.Divergence,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
