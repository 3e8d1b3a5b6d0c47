package redis

import (
	"context"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// RedisPresenceRegistry keeps per-user room membership in a redis set, so
// presence is visible to every server instance. Each operation maps to a
// single atomic set command; idempotence comes for free from set semantics.
type RedisPresenceRegistry struct {
	rdb *redis.Client
}

func NewRedisPresenceRegistry(rdb *redis.Client) *RedisPresenceRegistry {
	return &RedisPresenceRegistry{rdb: rdb}
}

func (p *RedisPresenceRegistry) roomsKey(userID string) string {
	return "presence:user:" + userID + ":rooms"
}

func (p *RedisPresenceRegistry) AddMembership(ctx context.Context, userID string, room domain.Room) error {
	if err := p.rdb.SAdd(ctx, p.roomsKey(userID), string(room)).Err(); err != nil {
		return domain.UnavailableError(err, "presence store unreachable")
	}
	return nil
}

func (p *RedisPresenceRegistry) RemoveMembership(ctx context.Context, userID string, room domain.Room) error {
	if err := p.rdb.SRem(ctx, p.roomsKey(userID), string(room)).Err(); err != nil {
		return domain.UnavailableError(err, "presence store unreachable")
	}
	return nil
}

func (p *RedisPresenceRegistry) IsMember(ctx context.Context, userID string, room domain.Room) (bool, error) {
	ok, err := p.rdb.SIsMember(ctx, p.roomsKey(userID), string(room)).Result()
	if err != nil {
		return false, domain.UnavailableError(err, "presence store unreachable")
	}
	return ok, nil
}

func (p *RedisPresenceRegistry) MembershipsOf(ctx context.Context, userID string) ([]domain.Room, error) {
	members, err := p.rdb.SMembers(ctx, p.roomsKey(userID)).Result()
	if err != nil {
		return nil, domain.UnavailableError(err, "presence store unreachable")
	}
	rooms := make([]domain.Room, 0, len(members))
	for _, m := range members {
		rooms = append(rooms, domain.Room(m))
	}
	return rooms, nil
}
