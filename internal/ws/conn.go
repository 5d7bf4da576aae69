package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// wsConn is the write-side surface of a websocket connection. Gorilla's
// *websocket.Conn satisfies it.
type wsConn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Conn is a registered connection handle. Gorilla allows only one
// concurrent writer, so all writes (including keepalive pings) go
// through the mutex here.
type Conn struct {
	id string
	ws wsConn

	mu sync.Mutex
}

func newConn(ws wsConn) *Conn {
	return &Conn{id: uuid.NewString(), ws: ws}
}

func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *Conn) writeControl(messageType int, data []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(messageType, data, deadline)
}

func (c *Conn) close() error {
	return c.ws.Close()
}
