package contracts

import (
	"context"
)

// NotificationQueue decouples the dispatcher from the push sink: absent
// recipients' notifications are enqueued here and drained by the worker.
type NotificationQueue interface {
	Enqueue(ctx context.Context, payload []byte) error
	// Subscribe starts a consumer-group read loop delivering each entry to
	// handler until ctx is done.
	Subscribe(ctx context.Context, group string, handler func(ctx context.Context, jobID string, data []byte) error) error
	// Acknowledge marks the job as processed for the consumer group.
	Acknowledge(ctx context.Context, group, jobID string) error
	// DeleteJob removes a processed job from the stream.
	DeleteJob(ctx context.Context, jobID string) error
}
