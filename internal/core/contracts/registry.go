package contracts

import (
	"context"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// GroupTransport is the per-node broadcast primitive: named groups of live
// connections, an event+payload fan-out to a group, and unicast to one
// connection. The platform (websocket hub) provides it; services only fan
// out through it.
type GroupTransport interface {
	JoinGroup(connID string, room domain.Room)
	LeaveGroup(connID string, room domain.Room)
	ToGroup(ctx context.Context, room domain.Room, event string, payload any)
	ToConnection(ctx context.Context, connID string, event string, payload any)
	// GroupContains reports whether the user still has a live connection in
	// the room other than excludeConnID. The disconnect sweep uses it to
	// avoid evicting a sibling device's membership.
	GroupContains(room domain.Room, userID string, excludeConnID string) bool
}

// Client is the minimal surface the hub needs from one connection.
type Client interface {
	ID() string
	UserID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
