package contracts

import (
	"context"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// PresenceRegistry is the cluster-visible membership store: which rooms a
// user currently holds presence in. Every operation is one atomic set
// operation on the backing store, so the registry needs no locking of its
// own. All operations are idempotent: adding twice or removing a non-member
// is a no-op, not an error.
//
// When the backing store is unreachable the registry fails with an
// UNAVAILABLE error; callers must treat presence as unknown and fail toward
// notifying rather than silently dropping delivery.
type PresenceRegistry interface {
	AddMembership(ctx context.Context, userID string, room domain.Room) error
	RemoveMembership(ctx context.Context, userID string, room domain.Room) error
	IsMember(ctx context.Context, userID string, room domain.Room) (bool, error)
	MembershipsOf(ctx context.Context, userID string) ([]domain.Room, error)
}
