package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/warehouses"
)

type CreateWarehouseRequest struct {
	Code               string `json:"codigo" binding:"required"`
	Name               string `json:"nome" binding:"required"`
	Levels             string `json:"niveis" binding:"required"`
	Cities             int    `json:"cidades" binding:"required,min=1"`
	DistrictsPerCity   int    `json:"bairros_por_cidade" binding:"required,min=1"`
	StreetsPerDistrict int    `json:"ruas_por_bairro" binding:"required,min=1"`
	BuildingsPerStreet int    `json:"predios_por_rua" binding:"required,min=1"`
	Barcode            string `json:"codigo_barras"`
}

type UpdateWarehouseRequest struct {
	Name               *string `json:"nome"`
	Levels             *string `json:"niveis"`
	Cities             *int    `json:"cidades"`
	DistrictsPerCity   *int    `json:"bairros_por_cidade"`
	StreetsPerDistrict *int    `json:"ruas_por_bairro"`
	BuildingsPerStreet *int    `json:"predios_por_rua"`
}

type WarehouseResponse struct {
	ID                 string `json:"id"`
	Code               string `json:"codigo"`
	Name               string `json:"nome"`
	Levels             string `json:"niveis"`
	Cities             int    `json:"cidades"`
	DistrictsPerCity   int    `json:"bairros_por_cidade"`
	StreetsPerDistrict int    `json:"ruas_por_bairro"`
	BuildingsPerStreet int    `json:"predios_por_rua"`
	Barcode            string `json:"codigo_barras"`
	CreatedAt          string `json:"criado_em"`
}

func NewWarehouseResponse(w *warehouses.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:                 w.ID,
		Code:               w.Code,
		Name:               w.Name,
		Levels:             w.Levels,
		Cities:             w.Cities,
		DistrictsPerCity:   w.DistrictsPerCity,
		StreetsPerDistrict: w.StreetsPerDistrict,
		BuildingsPerStreet: w.BuildingsPerStreet,
		Barcode:            w.Barcode,
		CreatedAt:          w.CreatedAt.Format(time.RFC3339),
	}
}
