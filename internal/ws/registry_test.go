package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubWS struct {
	mu     sync.Mutex
	frames []any
	fail   bool
	closed bool
}

func (s *stubWS) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("write on closed connection")
	}
	s.frames = append(s.frames, v)
	return nil
}

func (s *stubWS) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (s *stubWS) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubWS) received() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.frames...)
}

func TestRegistryRegisterAndUnregister(t *testing.T) {
	registry := NewRegistry()
	conn := newConn(&stubWS{})

	assert.Equal(t, 0, registry.Connections("R1"))

	registry.Register("R1", conn)
	assert.Equal(t, 1, registry.Connections("R1"))

	registry.Unregister("R1", conn)
	assert.Equal(t, 0, registry.Connections("R1"))
}

func TestRegistryUnregisterUnknownIsNoop(t *testing.T) {
	registry := NewRegistry()
	conn := newConn(&stubWS{})

	registry.Unregister("R1", conn)
	assert.Equal(t, 0, registry.Connections("R1"))

	// Double unregister after a real registration must not underflow.
	registry.Register("R1", conn)
	registry.Unregister("R1", conn)
	registry.Unregister("R1", conn)
	assert.Equal(t, 0, registry.Connections("R1"))
}

func TestRegistryGroupsAreIndependent(t *testing.T) {
	registry := NewRegistry()
	registry.Register("R1", newConn(&stubWS{}))
	registry.Register("R1", newConn(&stubWS{}))
	registry.Register("R2", newConn(&stubWS{}))

	assert.Equal(t, 2, registry.Connections("R1"))
	assert.Equal(t, 1, registry.Connections("R2"))
}

func TestBroadcastReachesEveryHandle(t *testing.T) {
	registry := NewRegistry()
	first := &stubWS{}
	second := &stubWS{}
	registry.Register("R1", newConn(first))
	registry.Register("R1", newConn(second))

	frame := ErrorFrame{Error: "teste"}
	count := registry.Broadcast("R1", frame)

	assert.Equal(t, 2, count)
	assert.Equal(t, []any{frame}, first.received())
	assert.Equal(t, []any{frame}, second.received())
}

func TestBroadcastToAbsentGroup(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, 0, registry.Broadcast("R9", ErrorFrame{Error: "x"}))
}

func TestBroadcastSurvivesFailedWrite(t *testing.T) {
	registry := NewRegistry()
	dead := &stubWS{fail: true}
	live := &stubWS{}
	registry.Register("R1", newConn(dead))
	registry.Register("R1", newConn(live))

	count := registry.Broadcast("R1", ErrorFrame{Error: "x"})

	assert.Equal(t, 2, count)
	assert.Len(t, live.received(), 1)
}
