package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/inventory"
	"github.com/sia-robotics/sia-server/internal/warehouses"
)

type WarehouseHandler struct {
	warehouseService *warehouses.Service
	inventoryService *inventory.Service
}

func NewWarehouseHandler(warehouseService *warehouses.Service, inventoryService *inventory.Service) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService, inventoryService: inventoryService}
}

func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warehouse, err := h.warehouseService.Create(c.Request.Context(), warehouses.CreateParams{
		Code:               req.Code,
		Name:               req.Name,
		Levels:             req.Levels,
		Cities:             req.Cities,
		DistrictsPerCity:   req.DistrictsPerCity,
		StreetsPerDistrict: req.StreetsPerDistrict,
		BuildingsPerStreet: req.BuildingsPerStreet,
		Barcode:            req.Barcode,
	})
	if err != nil {
		if errors.Is(err, warehouses.ErrDuplicateCode) {
			c.JSON(http.StatusConflict, gin.H{"error": "warehouse code already in use"})
			return
		}
		slog.Error("Failed to create warehouse", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create warehouse"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewWarehouseResponse(warehouse))
}

func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouse, err := h.warehouseService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, warehouses.ErrWarehouseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "warehouse not found"})
			return
		}
		slog.Error("Failed to get warehouse", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewWarehouseResponse(warehouse))
}

func (h *WarehouseHandler) List(c *gin.Context) {
	list, err := h.warehouseService.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list warehouses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]dto.WarehouseResponse, len(list))
	for i := range list {
		responses[i] = dto.NewWarehouseResponse(&list[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *WarehouseHandler) Update(c *gin.Context) {
	var req dto.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warehouse, err := h.warehouseService.Update(c.Request.Context(), c.Param("id"), warehouses.UpdateParams{
		Name:               req.Name,
		Levels:             req.Levels,
		Cities:             req.Cities,
		DistrictsPerCity:   req.DistrictsPerCity,
		StreetsPerDistrict: req.StreetsPerDistrict,
		BuildingsPerStreet: req.BuildingsPerStreet,
	})
	if err != nil {
		if errors.Is(err, warehouses.ErrWarehouseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "warehouse not found"})
			return
		}
		slog.Error("Failed to update warehouse", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewWarehouseResponse(warehouse))
}

func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	if err := h.warehouseService.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, warehouses.ErrWarehouseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "warehouse not found"})
			return
		}
		slog.Error("Failed to deactivate warehouse", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// InventoryStats reports occupancy for one warehouse, aggregated from
// the items its robots have recorded.
func (h *WarehouseHandler) InventoryStats(c *gin.Context) {
	stats, err := h.inventoryService.WarehouseStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Failed to compute inventory stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
