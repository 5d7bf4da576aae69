package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/images"
)

type RecordImageRequest struct {
	ImageURL    string `json:"url_imagem" binding:"required"`
	DecodedCode string `json:"codigo_decodificado"`
}

type ImageResponse struct {
	ID          string `json:"id"`
	RobotID     string `json:"robo_id"`
	ImageURL    string `json:"url_imagem"`
	DecodedCode string `json:"codigo_decodificado,omitempty"`
	CapturedAt  string `json:"capturado_em"`
}

func NewImageResponse(img *images.Image) ImageResponse {
	return ImageResponse{
		ID:          img.ID,
		RobotID:     img.RobotID,
		ImageURL:    img.ImageURL,
		DecodedCode: img.DecodedCode,
		CapturedAt:  img.CapturedAt.Format(time.RFC3339),
	}
}

type LogProcessingRequest struct {
	Status  string `json:"status" binding:"required"`
	Details string `json:"detalhes"`
}

type ProcessingLogResponse struct {
	ID        string `json:"id"`
	ImageID   string `json:"imagem_id"`
	Status    string `json:"status"`
	Details   string `json:"detalhes,omitempty"`
	CreatedAt string `json:"criado_em"`
}

func NewProcessingLogResponse(l *images.ProcessingLog) ProcessingLogResponse {
	return ProcessingLogResponse{
		ID:        l.ID,
		ImageID:   l.ImageID,
		Status:    l.Status,
		Details:   l.Details,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}
