package ws

// Inbound frame types. Every frame a robot sends carries a "type"
// discriminator; everything else is payload.
const (
	FrameStatusUpdate = "status_update"
	FrameLogError     = "log_error"
	FrameCommandAck   = "command_ack"
)

// InboundFrame is the envelope read off a robot connection.
type InboundFrame struct {
	Type      string         `json:"type"`
	Sensors   map[string]any `json:"sensores,omitempty"`
	Message   string         `json:"message,omitempty"`
	Origin    string         `json:"origin,omitempty"`
	CommandID string         `json:"command_id,omitempty"`
}

// AckFrame is written once when a session becomes active.
type AckFrame struct {
	Type  string `json:"type"`
	Robot string `json:"robot"`
}

// ErrorFrame reports a per-frame failure back on the same connection.
// Sending one never closes the session.
type ErrorFrame struct {
	Error string `json:"error"`
}

const (
	// CloseRobotRejected is sent when the connecting robot is unknown or
	// disabled. Distinguishable from normal closure so firmware can stop
	// retrying.
	CloseRobotRejected = 4001
)

const frameAckType = "connection_ack"
