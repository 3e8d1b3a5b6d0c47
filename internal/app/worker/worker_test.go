package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

type fakeQueue struct {
	acked   []string
	deleted []string
}

func (f *fakeQueue) Enqueue(ctx context.Context, payload []byte) error { return nil }

func (f *fakeQueue) Subscribe(ctx context.Context, group string, handler func(ctx context.Context, jobID string, data []byte) error) error {
	return nil
}

func (f *fakeQueue) Acknowledge(ctx context.Context, group, jobID string) error {
	f.acked = append(f.acked, jobID)
	return nil
}

func (f *fakeQueue) DeleteJob(ctx context.Context, jobID string) error {
	f.deleted = append(f.deleted, jobID)
	return nil
}

type notifyCall struct {
	userID string
	title  string
	body   string
	data   domain.NotificationData
}

type fakeSink struct {
	calls []notifyCall
	err   error
}

func (f *fakeSink) Notify(ctx context.Context, userID, title, body string, data domain.NotificationData) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, notifyCall{userID: userID, title: title, body: body, data: data})
	return nil
}

func newTestWorker(queue *fakeQueue, sink *fakeSink) *NotificationWorker {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNotificationWorker(log, queue, sink, "notification-workers").(*NotificationWorker)
}

func TestProcessJobDelivers(t *testing.T) {
	queue := &fakeQueue{}
	sink := &fakeSink{}
	w := newTestWorker(queue, sink)
	job := domain.NotificationJob{
		UserID: "user-1",
		Title:  "Ada",
		Body:   "hello",
		Data:   domain.NotificationData{EntityID: "chat-1", EntityType: domain.NotifyNewMessage},
	}
	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}

	if err := w.ProcessJob(context.Background(), "job-1", raw); err != nil {
		t.Fatalf("process job: %v", err)
	}
	if len(sink.calls) != 1 || sink.calls[0].userID != "user-1" {
		t.Fatalf("expected one push, got %+v", sink.calls)
	}
	if len(queue.acked) != 1 || queue.acked[0] != "job-1" {
		t.Fatal("expected the job acknowledged")
	}
	if len(queue.deleted) != 1 {
		t.Fatal("expected the job deleted")
	}
}

func TestProcessJobSinkFailureKeepsJobPending(t *testing.T) {
	queue := &fakeQueue{}
	sink := &fakeSink{err: errors.New("push service down")}
	w := newTestWorker(queue, sink)
	raw, _ := json.Marshal(domain.NotificationJob{UserID: "user-1"})

	if err := w.ProcessJob(context.Background(), "job-1", raw); err == nil {
		t.Fatal("expected error")
	}
	if len(queue.acked) != 0 {
		t.Fatal("a failed push must stay in the pending list")
	}
}

func TestProcessJobDropsMalformedPayload(t *testing.T) {
	queue := &fakeQueue{}
	sink := &fakeSink{}
	w := newTestWorker(queue, sink)

	if err := w.ProcessJob(context.Background(), "job-1", []byte("{nope")); err != nil {
		t.Fatalf("process job: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Fatal("malformed payload must not reach the sink")
	}
	if len(queue.acked) != 1 || len(queue.deleted) != 1 {
		t.Fatal("malformed payload must be dropped, not redelivered")
	}
}
