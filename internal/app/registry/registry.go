package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// Hub is the node-local group-broadcast primitive: it tracks live
// connections, the named groups each belongs to, and fans events out to a
// group or a single connection. Cluster-wide presence lives in the
// PresenceRegistry; the hub only knows this process's sockets.
type Hub struct {
	mu      sync.RWMutex
	log     *slog.Logger
	clients map[string]contracts.Client                    // conn_id -> client
	groups  map[domain.Room]map[string]contracts.Client    // room -> conn_id -> client
	rooms   map[string]map[domain.Room]struct{}            // conn_id -> joined rooms
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]contracts.Client),
		groups:  make(map[domain.Room]map[string]contracts.Client),
		rooms:   make(map[string]map[domain.Room]struct{}),
	}
}

func (h *Hub) Register(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
	h.rooms[c.ID()] = make(map[domain.Room]struct{})
}

// Unregister drops the client and leaves every group it joined.
func (h *Hub) Unregister(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	connID := c.ID()
	for room := range h.rooms[connID] {
		h.leaveLocked(connID, room)
	}
	delete(h.rooms, connID)
	delete(h.clients, connID)
}

func (h *Hub) JoinGroup(connID string, room domain.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if h.groups[room] == nil {
		h.groups[room] = make(map[string]contracts.Client)
	}
	h.groups[room][connID] = c
	h.rooms[connID][room] = struct{}{}
}

func (h *Hub) LeaveGroup(connID string, room domain.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, room)
	if joined, ok := h.rooms[connID]; ok {
		delete(joined, room)
	}
}

func (h *Hub) leaveLocked(connID string, room domain.Room) {
	delete(h.groups[room], connID)
	if len(h.groups[room]) == 0 {
		delete(h.groups, room)
	}
}

func (h *Hub) ToGroup(ctx context.Context, room domain.Room, event string, payload any) {
	data, err := json.Marshal(domain.EventEnvelope{Event: event, Data: payload})
	if err != nil {
		h.log.ErrorContext(ctx, "hub - to group - marshal failed", "event", event, "err", err)
		return
	}
	h.mu.RLock()
	members := make([]contracts.Client, 0, len(h.groups[room]))
	for _, c := range h.groups[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()
	for _, c := range members {
		_ = c.Send(ctx, data)
	}
}

func (h *Hub) ToConnection(ctx context.Context, connID string, event string, payload any) {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	data, err := json.Marshal(domain.EventEnvelope{Event: event, Data: payload})
	if err != nil {
		h.log.ErrorContext(ctx, "hub - to connection - marshal failed", "event", event, "err", err)
		return
	}
	_ = c.Send(ctx, data)
}

// GroupContains reports whether userID has a live connection in room other
// than excludeConnID.
func (h *Hub) GroupContains(room domain.Room, userID string, excludeConnID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, c := range h.groups[room] {
		if connID == excludeConnID {
			continue
		}
		if c.UserID() == userID {
			return true
		}
	}
	return false
}
