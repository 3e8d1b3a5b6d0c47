package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type IMessageService interface {
	// SendMessage validates the payload, persists it with status SENT and
	// returns the stored message for the dispatcher to fan out.
	SendMessage(ctx context.Context, chatID, senderID uuid.UUID, content string, mtype domain.MessageType, mediaURLs []string, duration int) (*domain.Message, error)
	// MarkDelivered advances every SENT message of the chat to DELIVERED for
	// the given viewer and emits one delivery event per affected message.
	MarkDelivered(ctx context.Context, chatID, forUser uuid.UUID) ([]uuid.UUID, error)
	// MarkRead records missing read receipts and reports the newly marked ids.
	MarkRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) ([]uuid.UUID, time.Time, error)
	History(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error)
}

type MessageService struct {
	log          *slog.Logger
	messages     domain.MessageRepository
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	receipts     domain.ReadReceiptRepository
	txManager    domain.TxManager
	transport    contracts.GroupTransport
	bus          contracts.EventBus
}

func NewMessageService(
	log *slog.Logger,
	messages domain.MessageRepository,
	chats domain.ChatRepository,
	participants domain.ParticipantRepository,
	receipts domain.ReadReceiptRepository,
	txManager domain.TxManager,
	transport contracts.GroupTransport,
	bus contracts.EventBus,
) *MessageService {
	return &MessageService{
		log:          log,
		messages:     messages,
		chats:        chats,
		participants: participants,
		receipts:     receipts,
		txManager:    txManager,
		transport:    transport,
		bus:          bus,
	}
}

func (s *MessageService) SendMessage(
	ctx context.Context,
	chatID, senderID uuid.UUID,
	content string,
	mtype domain.MessageType,
	mediaURLs []string,
	duration int,
) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.SendMessage", trace.WithAttributes(
		attribute.String("chat_id", chatID.String()),
		attribute.String("sender_id", senderID.String()),
		attribute.String("type", string(mtype)),
	))
	defer span.End()

	if mtype == "" {
		mtype = domain.MessageText
	}
	if err := validateMedia(mtype, mediaURLs); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if mtype != domain.MessageAudio {
		duration = 0
	}
	now := time.Now().UTC()
	msg := &domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		MediaURLs: mediaURLs,
		Type:      mtype,
		Status:    domain.StatusSent,
		Duration:  duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// A dropped connection must not abort a persist already in flight; the
	// write completes and only the reply is discarded.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.txManager.WithTx(persistCtx, func(txCtx context.Context) error {
		if err := s.messages.InsertMessage(txCtx, msg); err != nil {
			return err
		}
		if err := s.chats.TouchUpdatedAt(txCtx, chatID, now); err != nil {
			return err
		}
		return s.participants.IncrementUnread(txCtx, chatID, senderID)
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "messages - send message - persist failed", "chat_id", chatID, "sender_id", senderID, "err", err)
		return nil, domain.UnavailableError(err, "message store unreachable")
	}
	s.log.InfoContext(ctx, "messages - send message - persisted", "chat_id", chatID, "sender_id", senderID, "message_id", msg.ID)
	return msg, nil
}

func (s *MessageService) MarkDelivered(ctx context.Context, chatID, forUser uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := tracer.Start(ctx, "MessageService.MarkDelivered", trace.WithAttributes(
		attribute.String("chat_id", chatID.String()),
		attribute.String("user_id", forUser.String()),
	))
	defer span.End()

	ids, err := s.messages.AdvanceStatus(ctx, chatID, domain.StatusSent, domain.StatusDelivered)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "messages - mark delivered - advance status failed", "chat_id", chatID, "user_id", forUser, "err", err)
		return nil, domain.UnavailableError(err, "message store unreachable")
	}
	room := domain.ChatRoom(chatID)
	for _, id := range ids {
		s.transport.ToGroup(ctx, room, domain.EventMessageDelivered, domain.MessageDeliveredEvent{
			MessageID:   id.String(),
			DeliveredTo: forUser.String(),
			Status:      string(domain.StatusDelivered),
		})
	}
	return ids, nil
}

func (s *MessageService) MarkRead(
	ctx context.Context,
	chatID, userID uuid.UUID,
	messageIDs []uuid.UUID,
) ([]uuid.UUID, time.Time, error) {
	ctx, span := tracer.Start(ctx, "MessageService.MarkRead", trace.WithAttributes(
		attribute.String("chat_id", chatID.String()),
		attribute.String("user_id", userID.String()),
		attribute.Int("message_ids", len(messageIDs)),
	))
	defer span.End()

	readAt := time.Now().UTC()
	var newlyMarked []uuid.UUID
	if err := s.txManager.WithTx(context.WithoutCancel(ctx), func(txCtx context.Context) error {
		for _, id := range messageIDs {
			created, err := s.receipts.InsertIfAbsent(txCtx, id, userID, readAt)
			if err != nil {
				return err
			}
			if created {
				newlyMarked = append(newlyMarked, id)
			}
		}
		return s.participants.ResetUnread(txCtx, chatID, userID)
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "messages - mark read - persist failed", "chat_id", chatID, "user_id", userID, "err", err)
		return nil, readAt, domain.UnavailableError(err, "message store unreachable")
	}
	if len(newlyMarked) == 0 {
		return nil, readAt, nil
	}
	idStrs := make([]string, 0, len(newlyMarked))
	for _, id := range newlyMarked {
		idStrs = append(idStrs, id.String())
	}
	event := domain.MessagesReadEvent{
		ChatID:     chatID.String(),
		UserID:     userID.String(),
		MessageIDs: idStrs,
		ReadAt:     readAt,
	}
	s.transport.ToGroup(ctx, domain.ChatRoom(chatID), domain.EventMessagesRead, event)
	busEvent := domain.BusMessageRead{
		ChatID:     event.ChatID,
		UserID:     event.UserID,
		MessageIDs: event.MessageIDs,
		ReadAt:     event.ReadAt,
	}
	if err := s.bus.Publish(ctx, domain.SubjectMessageRead, busEvent); err != nil {
		s.log.ErrorContext(ctx, "messages - mark read - bus publish failed", "chat_id", chatID, "err", err)
	}
	return newlyMarked, readAt, nil
}

func (s *MessageService) History(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	msgs, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		s.log.ErrorContext(ctx, "messages - history - list failed", "chat_id", chatID, "err", err)
		return nil, domain.UnavailableError(err, "message store unreachable")
	}
	return msgs, nil
}
