package ws

import (
	"log/slog"
	"sync"

	"github.com/sia-robotics/sia-server/internal/metrics"
)

// Registry tracks live robot connections grouped by robot identifier.
// A robot may hold more than one connection at a time (reconnect races
// leave a short overlap); broadcasts go to every handle in the group.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{groups: map[string]map[*Conn]struct{}{}}
}

// Register adds conn to the group for identifier, creating the group if
// needed.
func (r *Registry) Register(identifier string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[identifier]
	if !ok {
		group = map[*Conn]struct{}{}
		r.groups[identifier] = group
	}
	group[conn] = struct{}{}
	metrics.LiveConnections.Inc()
}

// Unregister removes conn from the group for identifier. Removing the
// last handle drops the group. Unregistering a connection that is not
// present is a no-op.
func (r *Registry) Unregister(identifier string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[identifier]
	if !ok {
		return
	}
	if _, ok := group[conn]; !ok {
		return
	}
	delete(group, conn)
	metrics.LiveConnections.Dec()
	if len(group) == 0 {
		delete(r.groups, identifier)
	}
}

// Connections reports the number of live handles for identifier.
func (r *Registry) Connections(identifier string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[identifier])
}

// Broadcast sends frame to every connection registered for identifier
// and returns the number of handles attempted. A failed write is logged
// and counted but never interrupts delivery to the remaining handles.
func (r *Registry) Broadcast(identifier string, frame any) int {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.groups[identifier]))
	for conn := range r.groups[identifier] {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(frame); err != nil {
			metrics.DeliveryFailures.Inc()
			slog.Warn("broadcast write failed", "robot", identifier, "conn", conn.id, "error", err)
			continue
		}
		metrics.CommandDeliveries.Inc()
	}
	return len(conns)
}
