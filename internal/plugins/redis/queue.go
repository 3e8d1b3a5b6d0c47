package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const notificationStream = "notifications:stream"

// RedisNotificationQueue buffers push-notification jobs in a redis stream so
// a sink outage never blocks message dispatch. Consumer groups give at-least
// once delivery to the worker.
type RedisNotificationQueue struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisNotificationQueue(log *slog.Logger, rdb *redis.Client) *RedisNotificationQueue {
	return &RedisNotificationQueue{rdb: rdb, log: log}
}

func (q *RedisNotificationQueue) Enqueue(ctx context.Context, payload []byte) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: notificationStream,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": payload},
	}).Err()
}

func (q *RedisNotificationQueue) Subscribe(
	ctx context.Context,
	group string,
	handler func(ctx context.Context, jobID string, data []byte) error,
) error {
	err := q.rdb.XGroupCreateMkStream(ctx, notificationStream, group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	consumerName := uuid.NewString()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			res, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumerName,
				Streams:  []string{notificationStream, ">"},
				Count:    16,
				Block:    2 * time.Second,
			}).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					q.log.ErrorContext(ctx, "queue - subscribe - stream read failed", "err", err)
				}
				continue
			}
			for _, stream := range res {
				for _, msg := range stream.Messages {
					raw, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					if err := handler(ctx, msg.ID, []byte(raw)); err != nil {
						q.log.ErrorContext(ctx, "queue - subscribe - handler failed", "job_id", msg.ID, "err", err)
					}
				}
			}
		}
	}
}

func (q *RedisNotificationQueue) Acknowledge(ctx context.Context, group, jobID string) error {
	return q.rdb.XAck(ctx, notificationStream, group, jobID).Err()
}

func (q *RedisNotificationQueue) DeleteJob(ctx context.Context, jobID string) error {
	return q.rdb.XDel(ctx, notificationStream, jobID).Err()
}
