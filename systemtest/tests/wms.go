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
)

// TestWMSReconciliation drives the external-WMS surface: API token
// provisioning, webhook ingest and the checklist report.
func TestWMSReconciliation(t *testing.T, router *gin.Engine) {
	masterToken := login(t, router, "root@sia.local", "changeme123")

	warehouseID := createWarehouse(t, router, masterToken, "G-WMS")
	robotID := createRobot(t, router, masterToken, "R-WMS", warehouseID)

	start := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	body := dto.CreateScheduleRequest{
		RobotID:     robotID,
		WarehouseID: warehouseID,
		Kind:        "completo",
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
	}
	rr := doJSONWithAuth(router, "POST", "/api/schedules", body, masterToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	var schedule dto.ScheduleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &schedule))

	rr = doJSONWithAuth(router, "POST", "/api/schedules/"+schedule.ID+"/inventory",
		dto.RecordItemRequest{PalletCode: "PAL-777", AddressCode: "C01:B01:R01:P01"}, masterToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	const wmsToken = "wms-integration-token"

	t.Run("token provisioning", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/api/wms/tokens", dto.CreateWMSTokenRequest{
			Token:     wmsToken,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doJSONWithAuth(router, "POST", "/api/wms/tokens", dto.CreateWMSTokenRequest{
			Token:     wmsToken,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, masterToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("webhook verifies a recorded pallet", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/wms/webhook",
			dto.WebhookRequest{PalletCode: "PAL-777"}, wmsToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.WebhookResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Verified)
		assert.Empty(t, resp.Divergence)
	})

	t.Run("webhook flags an unknown pallet", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/wms/webhook",
			dto.WebhookRequest{PalletCode: "PAL-999"}, wmsToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.WebhookResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Verified)
		assert.NotEmpty(t, resp.Divergence)
	})

	t.Run("webhook rejects missing and expired tokens", func(t *testing.T) {
		rr := doJSON(router, "POST", "/wms/webhook", dto.WebhookRequest{PalletCode: "PAL-777"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		expired := doJSONWithAuth(router, "POST", "/api/wms/tokens", dto.CreateWMSTokenRequest{
			Token:     "wms-expired-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}, masterToken)
		require.Equal(t, http.StatusCreated, expired.Code)

		rr = doJSONWithAuth(router, "POST", "/wms/webhook",
			dto.WebhookRequest{PalletCode: "PAL-777"}, "wms-expired-token")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("checklists report divergences", func(t *testing.T) {
		rr := doJSONWithAuth(router, "GET", "/api/wms/checklists?divergente=true", nil, masterToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var list []dto.ChecklistResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		require.NotEmpty(t, list)
		for _, entry := range list {
			assert.False(t, entry.FoundLocally)
			assert.NotEmpty(t, entry.Divergence)
		}

		rr = doJSONWithAuth(router, "GET", "/api/wms/checklists?referencia=PAL-777", nil, masterToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "PAL-777")
	})

	t.Run("token management requires operator role", func(t *testing.T) {
		operatorToken := login(t, router, "joana@sia.local", "senhaforte1")
		rr := doJSONWithAuth(router, "POST", "/api/wms/tokens", dto.CreateWMSTokenRequest{
			Token:     "wms-unauthorized",
			ExpiresAt: time.Now().Add(time.Hour),
		}, operatorToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
