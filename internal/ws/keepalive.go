package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// startKeepalive pings the peer on a timer and extends the read
// deadline on every pong. A robot that stops answering is detected by
// the expired read deadline, which fails the session's read loop.
func startKeepalive(ctx context.Context, ws *websocket.Conn, conn *Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := conn.writeControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				if err != nil {
					return
				}
			}
		}
	}()
}
