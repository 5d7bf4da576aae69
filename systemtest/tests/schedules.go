package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/inventory"
)

func TestScheduleFlow(t *testing.T, router *gin.Engine) {
	masterToken := login(t, router, "root@sia.local", "changeme123")

	warehouseID := createWarehouse(t, router, masterToken, "G-02")
	otherWarehouseID := createWarehouse(t, router, masterToken, "G-03")
	robotID := createRobot(t, router, masterToken, "R2", warehouseID)

	start := time.Now().Add(time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)

	var scheduleID string

	t.Run("create schedule", func(t *testing.T) {
		body := dto.CreateScheduleRequest{
			RobotID:     robotID,
			WarehouseID: warehouseID,
			Kind:        "completo",
			StartsAt:    start,
			EndsAt:      end,
			Description: "inventario noturno",
		}
		rr := doJSONWithAuth(router, "POST", "/api/schedules", body, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.ScheduleResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "aguardando", resp.Status)
		scheduleID = resp.ID
	})

	t.Run("overlapping schedule conflicts", func(t *testing.T) {
		body := dto.CreateScheduleRequest{
			RobotID:     robotID,
			WarehouseID: warehouseID,
			Kind:        "completo",
			StartsAt:    start.Add(30 * time.Minute),
			EndsAt:      end.Add(30 * time.Minute),
		}
		rr := doJSONWithAuth(router, "POST", "/api/schedules", body, masterToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("robot must belong to the warehouse", func(t *testing.T) {
		body := dto.CreateScheduleRequest{
			RobotID:     robotID,
			WarehouseID: otherWarehouseID,
			Kind:        "completo",
			StartsAt:    end.Add(time.Hour),
			EndsAt:      end.Add(2 * time.Hour),
		}
		rr := doJSONWithAuth(router, "POST", "/api/schedules", body, masterToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("inverted period is rejected", func(t *testing.T) {
		body := dto.CreateScheduleRequest{
			RobotID:     robotID,
			WarehouseID: warehouseID,
			Kind:        "completo",
			StartsAt:    end,
			EndsAt:      start,
		}
		rr := doJSONWithAuth(router, "POST", "/api/schedules", body, masterToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("record inventory and compute stats", func(t *testing.T) {
		items := []dto.RecordItemRequest{
			{PalletCode: "PLT-0001", AddressCode: "C01:B01:R02:P05"},
			{PalletCode: "PLT-0002", AddressCode: "C01:B02:R01:P01"},
			{PalletCode: "PLT-0003", AddressCode: "C02:B01:R03:P04"},
		}
		for _, item := range items {
			rr := doJSONWithAuth(router, "POST", "/api/schedules/"+scheduleID+"/inventory", item, masterToken)
			require.Equal(t, http.StatusCreated, rr.Code)
		}

		rr := doJSONWithAuth(router, "GET", "/api/warehouses/"+warehouseID+"/inventory/stats", nil, masterToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var stats inventory.Stats
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 2, stats.ByCity["C01"].Count)
		assert.Equal(t, 1, stats.ByCity["C02"].Count)
	})

	t.Run("trajectory with points", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/api/schedules/"+scheduleID+"/trajectories",
			dto.RecordTrajectoryRequest{LocationCode: "C01:B01:R02", Sensors: map[string]any{"bateria": 64.0}}, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		var trajectory dto.TrajectoryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trajectory))

		rr = doJSONWithAuth(router, "POST", "/api/trajectories/"+trajectory.ID+"/points",
			dto.AddPointRequest{Code: "C01:B01:R02:P01", Kind: "checkpoint", RecordedAt: time.Now()}, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doJSONWithAuth(router, "GET", "/api/trajectories/"+trajectory.ID+"/points", nil, masterToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "checkpoint")
	})

	t.Run("cancel schedule", func(t *testing.T) {
		rr := doJSONWithAuth(router, "DELETE", "/api/schedules/"+scheduleID, nil, masterToken)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = doJSONWithAuth(router, "GET", "/api/schedules/"+scheduleID, nil, masterToken)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
