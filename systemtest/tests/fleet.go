package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/ws"
)

// TestRobotChannel drives a robot end to end: fleet registration, the
// persistent channel, telemetry, command push and acknowledgement.
func TestRobotChannel(t *testing.T, router *gin.Engine, serverURL string, registry *ws.Registry) {
	masterToken := login(t, router, "root@sia.local", "changeme123")

	warehouseID := createWarehouse(t, router, masterToken, "G-01")
	robotID := createRobot(t, router, masterToken, "R1", warehouseID)

	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws/robots/R1"
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	var ack map[string]any
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, client.ReadJSON(&ack))
	assert.Equal(t, "connection_ack", ack["type"])
	assert.Equal(t, "R1", ack["robot"])

	t.Run("healthy battery marks robot active", func(t *testing.T) {
		require.NoError(t, client.WriteJSON(map[string]any{
			"type":     "status_update",
			"sensores": map[string]any{"bateria": 82.0, "temperatura": 28.4},
		}))

		require.Eventually(t, func() bool {
			return robotStatus(t, router, masterToken, robotID) == "ativo"
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("low battery marks robot inactive", func(t *testing.T) {
		require.NoError(t, client.WriteJSON(map[string]any{
			"type":     "status_update",
			"sensores": map[string]any{"bateria": 3.0},
		}))

		require.Eventually(t, func() bool {
			return robotStatus(t, router, masterToken, robotID) == "inativo"
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("snapshot without battery reading marks robot inactive", func(t *testing.T) {
		require.NoError(t, client.WriteJSON(map[string]any{
			"type":     "status_update",
			"sensores": map[string]any{"bateria": 55.0},
		}))
		require.Eventually(t, func() bool {
			return robotStatus(t, router, masterToken, robotID) == "ativo"
		}, 2*time.Second, 50*time.Millisecond)

		require.NoError(t, client.WriteJSON(map[string]any{
			"type":     "status_update",
			"sensores": map[string]any{"temperatura": 31.0},
		}))
		require.Eventually(t, func() bool {
			return robotStatus(t, router, masterToken, robotID) == "inativo"
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("command is pushed over the channel and acknowledged", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/api/robots/"+robotID+"/commands",
			dto.IssueCommandRequest{Kind: "pausar"}, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		var frame map[string]any
		require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, client.ReadJSON(&frame))
		assert.Equal(t, "pausar", frame["command"])
		commandID, _ := frame["command_id"].(string)
		require.NotEmpty(t, commandID)

		require.NoError(t, client.WriteJSON(map[string]any{
			"type":       "command_ack",
			"command_id": commandID,
		}))

		require.Eventually(t, func() bool {
			rr := doJSONWithAuth(router, "GET", "/api/robots/"+robotID+"/commands/pending", nil, masterToken)
			return rr.Code == http.StatusOK && strings.TrimSpace(rr.Body.String()) == "[]"
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("error frame is recorded", func(t *testing.T) {
		require.NoError(t, client.WriteJSON(map[string]any{
			"type":    "log_error",
			"origin":  "navegacao",
			"message": "obstaculo inesperado na rua 4",
		}))

		require.Eventually(t, func() bool {
			rr := doJSONWithAuth(router, "GET", "/api/errors?robo_id="+robotID, nil, masterToken)
			return rr.Code == http.StatusOK && strings.Contains(rr.Body.String(), "obstaculo inesperado")
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("unknown robot is rejected with close code", func(t *testing.T) {
		badURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws/robots/RX"
		bad, _, err := websocket.DefaultDialer.Dial(badURL, nil)
		require.NoError(t, err)
		defer bad.Close()

		require.NoError(t, bad.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err = bad.ReadMessage()
		closeErr := &websocket.CloseError{}
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, ws.CloseRobotRejected, closeErr.Code)
	})

	t.Run("disconnect cleans the registry", func(t *testing.T) {
		require.Equal(t, 1, registry.Connections("R1"))
		client.Close()

		require.Eventually(t, func() bool {
			return registry.Connections("R1") == 0
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("command issued while offline stays pending", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/api/robots/"+robotID+"/commands",
			dto.IssueCommandRequest{Kind: "emergencia"}, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doJSONWithAuth(router, "GET", "/api/robots/"+robotID+"/commands/pending", nil, masterToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "emergencia")
	})

	t.Run("minted credential drives the polling fallback", func(t *testing.T) {
		operatorToken := login(t, router, "joana@sia.local", "senhaforte1")
		rr := doJSONWithAuth(router, "POST", "/api/robots/"+robotID+"/token", nil, operatorToken)
		require.Equal(t, http.StatusForbidden, rr.Code)

		rr = doJSONWithAuth(router, "POST", "/api/robots/"+robotID+"/token", nil, masterToken)
		require.Equal(t, http.StatusCreated, rr.Code)

		var minted dto.RobotTokenResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &minted))
		require.NotEmpty(t, minted.Token)
		assert.Equal(t, "R1", minted.Identifier)

		// Polling consumes the command left pending while offline.
		rr = doJSONWithAuth(router, "GET", "/fleet/R1/commands", nil, minted.Token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "emergencia")

		rr = doJSONWithAuth(router, "GET", "/fleet/R1/commands", nil, minted.Token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

		rr = doJSONWithAuth(router, "POST", "/fleet/R1/status",
			dto.StatusUpdateRequest{Sensors: map[string]any{"bateria": 64.0}}, minted.Token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ativo", robotStatus(t, router, masterToken, robotID))

		// The credential is bound to its robot.
		rr = doJSONWithAuth(router, "GET", "/fleet/R9/commands", nil, minted.Token)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		// Operator JWTs are not robot credentials.
		rr = doJSONWithAuth(router, "GET", "/fleet/R1/commands", nil, masterToken)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func createWarehouse(t *testing.T, router *gin.Engine, token, code string) string {
	t.Helper()
	body := dto.CreateWarehouseRequest{
		Code: code, Name: "Galpao " + code, Levels: "A,B,C",
		Cities: 4, DistrictsPerCity: 2, StreetsPerDistrict: 6, BuildingsPerStreet: 10,
	}
	rr := doJSONWithAuth(router, "POST", "/api/warehouses", body, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func createRobot(t *testing.T, router *gin.Engine, token, identifier, warehouseID string) string {
	t.Helper()
	body := dto.CreateRobotRequest{Identifier: identifier, WarehouseID: warehouseID, Model: "AGV-200"}
	rr := doJSONWithAuth(router, "POST", "/api/robots", body, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp dto.RobotResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func robotStatus(t *testing.T, router *gin.Engine, token, robotID string) string {
	t.Helper()
	rr := doJSONWithAuth(router, "GET", "/api/robots/"+robotID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dto.RobotResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Status
}
