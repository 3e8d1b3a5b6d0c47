package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// NotificationWorker drains the notification queue and hands each job to the
// push sink. Jobs are acknowledged only after the sink accepted them, so a
// crashed worker leaves its pending jobs for the next consumer.
type NotificationWorker struct {
	log   *slog.Logger
	queue contracts.NotificationQueue
	sink  contracts.NotificationSink
	group string
}

func NewNotificationWorker(
	log *slog.Logger,
	queue contracts.NotificationQueue,
	sink contracts.NotificationSink,
	group string,
) contracts.AsyncWorker {
	return &NotificationWorker{
		log:   log,
		queue: queue,
		sink:  sink,
		group: group,
	}
}

func (w *NotificationWorker) Run(ctx context.Context) error {
	w.log.InfoContext(ctx, "worker - run - consuming notification queue", "group", w.group)
	return w.queue.Subscribe(ctx, w.group, w.ProcessJob)
}

func (w *NotificationWorker) ProcessJob(
	ctx context.Context,
	jobID string,
	raw []byte,
) error {
	var job domain.NotificationJob
	if err := json.Unmarshal(raw, &job); err != nil {
		w.log.Error("worker - process job - wrong payload", "job_id", jobID)
		// A malformed job never becomes valid; drop it instead of redelivering.
		if err := w.queue.Acknowledge(ctx, w.group, jobID); err != nil {
			return err
		}
		return w.queue.DeleteJob(ctx, jobID)
	}
	if err := w.sink.Notify(ctx, job.UserID, job.Title, job.Body, job.Data); err != nil {
		w.log.ErrorContext(ctx, "worker - process job - push failed", "job_id", jobID, "user_id", job.UserID, "err", err)
		return err
	}
	// Confirmed by the sink; remove it from the Pending Entries List (PEL)
	if err := w.queue.Acknowledge(ctx, w.group, jobID); err != nil {
		w.log.ErrorContext(ctx, "worker - process job - acknowledge failed", "job_id", jobID)
		return err
	}
	// XDEL keeps the stream memory-efficient.
	if err := w.queue.DeleteJob(ctx, jobID); err != nil {
		// the job is already processed and ACKed.
		w.log.ErrorContext(ctx, "worker - process job - delete failed", "job_id", jobID)
	}
	w.log.InfoContext(ctx, "worker - process job - delivered", "job_id", jobID, "user_id", job.UserID)
	return nil
}
