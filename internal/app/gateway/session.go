package gateway

import (
	"sync"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// Session is the per-connection state the gateway tracks: the authenticated
// account and the rooms this connection joined. Room tracking feeds the
// disconnect sweep; it never substitutes for the cluster presence registry.
type Session struct {
	ConnID  string
	Account *domain.Account

	mu    sync.Mutex
	rooms map[domain.Room]struct{}
}

func NewSession(connID string, account *domain.Account) *Session {
	return &Session{
		ConnID:  connID,
		Account: account,
		rooms:   make(map[domain.Room]struct{}),
	}
}

func (s *Session) addRoom(room domain.Room) {
	s.mu.Lock()
	s.rooms[room] = struct{}{}
	s.mu.Unlock()
}

func (s *Session) removeRoom(room domain.Room) {
	s.mu.Lock()
	delete(s.rooms, room)
	s.mu.Unlock()
}

// Rooms returns a snapshot of the joined rooms.
func (s *Session) Rooms() []domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for room := range s.rooms {
		out = append(out, room)
	}
	return out
}
