package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"

	"github.com/sia-robotics/sia-server/internal/errorlog"
	"github.com/sia-robotics/sia-server/internal/metrics"
	"github.com/sia-robotics/sia-server/internal/robots"
)

// Session states.
const (
	stateConnecting    = "connecting"
	stateAuthenticated = "authenticated"
	stateActive        = "active"
	stateClosed        = "closed"
)

// Session events.
const (
	eventAuthenticate = "authenticate"
	eventActivate     = "activate"
	eventClose        = "close"
)

// TelemetryStore resolves robots and applies status frames.
type TelemetryStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*robots.Robot, error)
	ApplyStatus(ctx context.Context, robotID string, sensors map[string]any) (string, error)
}

// ErrorSink records error reports coming off the wire.
type ErrorSink interface {
	Append(ctx context.Context, robotID, origin, message string) (*errorlog.Entry, error)
}

// CommandAcker marks a delivered command as executed.
type CommandAcker interface {
	MarkExecuted(ctx context.Context, commandID string) error
}

// Handler upgrades robot connections and runs their sessions.
type Handler struct {
	registry *Registry
	store    TelemetryStore
	errors   ErrorSink
	acker    CommandAcker
	upgrader websocket.Upgrader
}

func NewHandler(registry *Registry, store TelemetryStore, errs ErrorSink, acker CommandAcker) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
		errors:   errs,
		acker:    acker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Robots connect from firmware, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleRobot is the gin handler for the robot channel. The path carries
// the robot identifier; authorization happens after the upgrade so the
// rejection can use a websocket close code the firmware understands.
func (h *Handler) HandleRobot(c *gin.Context) {
	identifier := c.Param("identifier")

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "robot", identifier, "error", err)
		return
	}

	session := newSession(h, identifier, ws)
	session.run(c.Request.Context())
}

type session struct {
	handler    *Handler
	identifier string
	robot      *robots.Robot
	ws         *websocket.Conn
	conn       *Conn
	machine    *fsm.FSM

	closeOnce sync.Once
}

func newSession(h *Handler, identifier string, ws *websocket.Conn) *session {
	s := &session{
		handler:    h,
		identifier: identifier,
		ws:         ws,
		conn:       newConn(ws),
	}
	s.machine = fsm.NewFSM(
		stateConnecting,
		fsm.Events{
			{Name: eventAuthenticate, Src: []string{stateConnecting}, Dst: stateAuthenticated},
			{Name: eventActivate, Src: []string{stateAuthenticated}, Dst: stateActive},
			{Name: eventClose, Src: []string{stateConnecting, stateAuthenticated, stateActive}, Dst: stateClosed},
		},
		fsm.Callbacks{
			"enter_" + stateActive: func(_ context.Context, _ *fsm.Event) {
				s.handler.registry.Register(s.identifier, s.conn)
			},
		},
	)
	return s
}

func (s *session) run(ctx context.Context) {
	defer s.teardown(ctx)

	robot, err := s.handler.store.GetByIdentifier(ctx, s.identifier)
	if err != nil || !robot.Enabled {
		s.reject(err)
		return
	}
	s.robot = robot

	if err := s.machine.Event(ctx, eventAuthenticate); err != nil {
		return
	}
	if err := s.machine.Event(ctx, eventActivate); err != nil {
		return
	}
	if err := s.conn.Send(AckFrame{Type: frameAckType, Robot: s.identifier}); err != nil {
		return
	}
	slog.Info("robot connected", "robot", s.identifier, "connections", s.handler.registry.Connections(s.identifier))

	keepaliveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	startKeepalive(keepaliveCtx, s.ws, s.conn)

	for {
		_, payload, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("robot connection dropped", "robot", s.identifier, "error", err)
			}
			return
		}
		s.handleFrame(ctx, payload)
	}
}

// handleFrame processes one inbound frame. A failure is reported back
// on the connection and never ends the session.
func (s *session) handleFrame(ctx context.Context, payload []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		metrics.TelemetryFrames.WithLabelValues("invalid", "error").Inc()
		s.replyError("invalid JSON frame")
		return
	}

	if err := s.dispatchFrame(ctx, frame); err != nil {
		metrics.TelemetryFrames.WithLabelValues(frame.Type, "error").Inc()
		slog.Warn("frame handling failed", "robot", s.identifier, "type", frame.Type, "error", err)
		s.replyError(err.Error())
		return
	}
	metrics.TelemetryFrames.WithLabelValues(frame.Type, "ok").Inc()
}

func (s *session) dispatchFrame(ctx context.Context, frame InboundFrame) error {
	switch frame.Type {
	case FrameStatusUpdate:
		_, err := s.handler.store.ApplyStatus(ctx, s.robot.ID, frame.Sensors)
		return err
	case FrameLogError:
		if frame.Message == "" {
			return errors.New("log_error frame requires a message")
		}
		_, err := s.handler.errors.Append(ctx, s.robot.ID, frame.Origin, frame.Message)
		return err
	case FrameCommandAck:
		if frame.CommandID == "" {
			return errors.New("command_ack frame requires a command_id")
		}
		return s.handler.acker.MarkExecuted(ctx, frame.CommandID)
	default:
		return errors.New("unknown frame type")
	}
}

func (s *session) replyError(msg string) {
	if err := s.conn.Send(ErrorFrame{Error: msg}); err != nil {
		slog.Warn("error reply failed", "robot", s.identifier, "error", err)
	}
}

// reject closes the connection with the rejection code before any
// registration happens.
func (s *session) reject(cause error) {
	slog.Info("robot rejected", "robot", s.identifier, "error", cause)
	msg := websocket.FormatCloseMessage(CloseRobotRejected, "robot not authorized")
	_ = s.conn.writeControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// teardown runs exactly once per session, whichever path ends it.
func (s *session) teardown(ctx context.Context) {
	s.closeOnce.Do(func() {
		wasActive := s.machine.Is(stateActive)
		_ = s.machine.Event(ctx, eventClose)
		if wasActive {
			s.handler.registry.Unregister(s.identifier, s.conn)
			slog.Info("robot disconnected", "robot", s.identifier, "connections", s.handler.registry.Connections(s.identifier))
		}
		_ = s.conn.close()
	})
}
