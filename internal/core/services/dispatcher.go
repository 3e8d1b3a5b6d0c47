package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("core-services")

type lifecycle interface {
	MarkDelivered(ctx context.Context, chatID, forUser uuid.UUID) ([]uuid.UUID, error)
}

type refresher interface {
	RefreshForMany(ctx context.Context, userIDs []uuid.UUID)
}

type IDispatcher interface {
	// Dispatch fans a stored message out: broadcast to the conversation room,
	// publish to the bus, then route each recipient live or out-of-band by
	// presence.
	Dispatch(ctx context.Context, msg *domain.Message, sender *domain.Account, recipients []uuid.UUID)
}

// Dispatcher decides, per recipient, between live delivery through the room
// and an out-of-band push notification. Presence is the only routing input.
type Dispatcher struct {
	log       *slog.Logger
	presence  contracts.PresenceRegistry
	transport contracts.GroupTransport
	queue     contracts.NotificationQueue
	bus       contracts.EventBus
	messages  lifecycle
	chatList  refresher
}

func NewDispatcher(
	log *slog.Logger,
	presence contracts.PresenceRegistry,
	transport contracts.GroupTransport,
	queue contracts.NotificationQueue,
	bus contracts.EventBus,
	messages lifecycle,
	chatList refresher,
) *Dispatcher {
	return &Dispatcher{
		log:       log,
		presence:  presence,
		transport: transport,
		queue:     queue,
		bus:       bus,
		messages:  messages,
		chatList:  chatList,
	}
}

func (d *Dispatcher) Dispatch(
	ctx context.Context,
	msg *domain.Message,
	sender *domain.Account,
	recipients []uuid.UUID,
) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("chat_id", msg.ChatID.String()),
		attribute.String("message_id", msg.ID.String()),
		attribute.Int("recipients", len(recipients)),
	))
	defer span.End()

	room := domain.ChatRoom(msg.ChatID)
	payload := domain.NewMessagePayload(msg)

	// The room broadcast is unconditional; presence gates only the push.
	d.transport.ToGroup(ctx, room, domain.EventNewMessage, payload)

	if err := d.bus.Publish(ctx, domain.SubjectMessageSent, domain.BusMessageSent{
		MessageID: msg.ID.String(),
		ChatID:    msg.ChatID.String(),
		SenderID:  msg.SenderID.String(),
		Content:   msg.Content,
		Type:      string(msg.Type),
		CreatedAt: msg.CreatedAt,
	}); err != nil {
		span.RecordError(err)
		d.log.ErrorContext(ctx, "dispatcher - dispatch - bus publish failed", "message_id", msg.ID, "err", err)
	}

	var firstPresent uuid.UUID
	delivered := false
	for _, userID := range recipients {
		if userID == msg.SenderID {
			continue
		}
		present, err := d.presence.IsMember(ctx, userID.String(), room)
		if err != nil {
			// Unknown presence counts as absent: a duplicate push beats a
			// silently dropped message.
			span.RecordError(err)
			d.log.WarnContext(ctx, "dispatcher - dispatch - presence check failed, pushing", "user_id", userID, "message_id", msg.ID, "err", err)
			present = false
		}
		if present {
			if !delivered {
				firstPresent = userID
			}
			delivered = true
			continue
		}
		d.enqueuePush(ctx, userID, msg, sender)
	}
	if delivered {
		if _, err := d.messages.MarkDelivered(ctx, msg.ChatID, firstPresent); err != nil {
			d.log.ErrorContext(ctx, "dispatcher - dispatch - mark delivered failed", "chat_id", msg.ChatID, "err", err)
		}
	}

	span.SetStatus(codes.Ok, "dispatched")
	d.chatList.RefreshForMany(ctx, recipients)
}

func (d *Dispatcher) enqueuePush(ctx context.Context, userID uuid.UUID, msg *domain.Message, sender *domain.Account) {
	job := domain.NotificationJob{
		UserID: userID.String(),
		Title:  sender.DisplayName,
		Body:   notificationBody(msg),
		Data: domain.NotificationData{
			EntityID:     msg.ChatID.String(),
			EntityType:   domain.NotifyNewMessage,
			SenderID:     sender.UserID.String(),
			SenderName:   sender.DisplayName,
			SenderAvatar: sender.AvatarURL,
		},
	}
	raw, err := json.Marshal(job)
	if err != nil {
		d.log.ErrorContext(ctx, "dispatcher - enqueue push - marshal failed", "user_id", userID, "err", err)
		return
	}
	if err := d.queue.Enqueue(ctx, raw); err != nil {
		d.log.ErrorContext(ctx, "dispatcher - enqueue push - enqueue failed", "user_id", userID, "message_id", msg.ID, "err", err)
	}
}

func notificationBody(msg *domain.Message) string {
	switch msg.Type {
	case domain.MessageImage:
		return "Sent a photo"
	case domain.MessageAudio:
		return "Sent a voice message"
	case domain.MessageVideo:
		return "Sent a video"
	case domain.MessageFile:
		return "Sent a file"
	case domain.MessageLocation:
		return "Shared a location"
	default:
		return msg.Content
	}
}
