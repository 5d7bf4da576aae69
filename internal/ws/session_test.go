package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-robotics/sia-server/internal/errorlog"
	"github.com/sia-robotics/sia-server/internal/robots"
)

type fakeStore struct {
	mu      sync.Mutex
	robots  map[string]*robots.Robot
	applied []map[string]any
}

func (f *fakeStore) GetByIdentifier(_ context.Context, identifier string) (*robots.Robot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	robot, ok := f.robots[identifier]
	if !ok {
		return nil, robots.ErrRobotNotFound
	}
	return robot, nil
}

func (f *fakeStore) ApplyStatus(_ context.Context, _ string, sensors map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, sensors)
	return robots.StatusActive, nil
}

func (f *fakeStore) appliedFrames() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.applied...)
}

type fakeSink struct {
	mu      sync.Mutex
	entries []errorlog.Entry
}

func (f *fakeSink) Append(_ context.Context, robotID, origin, message string) (*errorlog.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := errorlog.Entry{RobotID: robotID, Origin: origin, Message: message}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

type fakeAcker struct {
	mu    sync.Mutex
	acked []string
}

func (f *fakeAcker) MarkExecuted(_ context.Context, commandID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, commandID)
	return nil
}

type sessionFixture struct {
	server   *httptest.Server
	registry *Registry
	store    *fakeStore
	sink     *fakeSink
	acker    *fakeAcker
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeStore{robots: map[string]*robots.Robot{
		"R1": {ID: "3f6c0f0a-0000-0000-0000-000000000001", Identifier: "R1", Enabled: true},
		"R2": {ID: "3f6c0f0a-0000-0000-0000-000000000002", Identifier: "R2", Enabled: false},
	}}
	sink := &fakeSink{}
	acker := &fakeAcker{}
	registry := NewRegistry()

	router := gin.New()
	handler := NewHandler(registry, store, sink, acker)
	router.GET("/ws/robots/:identifier", handler.HandleRobot)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &sessionFixture{server: server, registry: registry, store: store, sink: sink, acker: acker}
}

func (f *sessionFixture) dial(t *testing.T, identifier string) *websocket.Conn {
	t.Helper()
	url := strings.Replace(f.server.URL, "http", "ws", 1) + "/ws/robots/" + identifier
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func readFrame(t *testing.T, client *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, client.ReadJSON(&frame))
	return frame
}

func TestSessionAcceptsKnownRobot(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")

	ack := readFrame(t, client)
	assert.Equal(t, "connection_ack", ack["type"])
	assert.Equal(t, "R1", ack["robot"])

	require.Eventually(t, func() bool {
		return fixture.registry.Connections("R1") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSessionRejectsUnknownRobot(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R9")

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	closeErr := &websocket.CloseError{}
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, CloseRobotRejected, closeErr.Code)
	assert.Equal(t, 0, fixture.registry.Connections("R9"))
}

func TestSessionRejectsDisabledRobot(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R2")

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	closeErr := &websocket.CloseError{}
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, CloseRobotRejected, closeErr.Code)
}

func TestStatusUpdateFrame(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.NoError(t, client.WriteJSON(map[string]any{
		"type":     "status_update",
		"sensores": map[string]any{"bateria": 87.5, "temperatura": 31.2},
	}))

	require.Eventually(t, func() bool {
		return len(fixture.store.appliedFrames()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 87.5, fixture.store.appliedFrames()[0]["bateria"])
}

func TestLogErrorFrame(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.NoError(t, client.WriteJSON(map[string]any{
		"type":    "log_error",
		"origin":  "navegacao",
		"message": "falha no sensor lidar",
	}))

	require.Eventually(t, func() bool {
		fixture.sink.mu.Lock()
		defer fixture.sink.mu.Unlock()
		return len(fixture.sink.entries) == 1
	}, time.Second, 10*time.Millisecond)

	fixture.sink.mu.Lock()
	entry := fixture.sink.entries[0]
	fixture.sink.mu.Unlock()
	assert.Equal(t, "navegacao", entry.Origin)
	assert.Equal(t, "falha no sensor lidar", entry.Message)
}

func TestCommandAckFrame(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.NoError(t, client.WriteJSON(map[string]any{
		"type":       "command_ack",
		"command_id": "cmd-42",
	}))

	require.Eventually(t, func() bool {
		fixture.acker.mu.Lock()
		defer fixture.acker.mu.Unlock()
		return len(fixture.acker.acked) == 1 && fixture.acker.acked[0] == "cmd-42"
	}, time.Second, 10*time.Millisecond)
}

func TestMalformedFrameKeepsSessionAlive(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("{not json")))

	reply := readFrame(t, client)
	assert.Equal(t, "invalid JSON frame", reply["error"])

	// The session must still process frames after a bad one.
	require.NoError(t, client.WriteJSON(map[string]any{
		"type":     "status_update",
		"sensores": map[string]any{"bateria": 50},
	}))
	require.Eventually(t, func() bool {
		return len(fixture.store.appliedFrames()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUnknownFrameTypeReportsError(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "selfie"}))

	reply := readFrame(t, client)
	assert.Equal(t, "unknown frame type", reply["error"])
}

func TestBroadcastReachesConnectedRobot(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.Eventually(t, func() bool {
		return fixture.registry.Connections("R1") == 1
	}, time.Second, 10*time.Millisecond)

	count := fixture.registry.Broadcast("R1", map[string]any{"command": "pausar", "command_id": "cmd-7"})
	assert.Equal(t, 1, count)

	frame := readFrame(t, client)
	assert.Equal(t, "pausar", frame["command"])
	assert.Equal(t, "cmd-7", frame["command_id"])
}

func TestDisconnectCleansRegistry(t *testing.T) {
	fixture := newSessionFixture(t)
	client := fixture.dial(t, "R1")
	readFrame(t, client)

	require.Eventually(t, func() bool {
		return fixture.registry.Connections("R1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, client.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))
	client.Close()

	require.Eventually(t, func() bool {
		return fixture.registry.Connections("R1") == 0
	}, time.Second, 10*time.Millisecond)
}
