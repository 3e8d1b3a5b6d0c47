package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type IChatService interface {
	// CreateDirectChat returns the existing DIRECT chat between the two users
	// when one exists, otherwise creates it with a seed system message.
	CreateDirectChat(ctx context.Context, creator *domain.Account, otherID uuid.UUID) (*domain.Chat, error)
	CreateGroupChat(ctx context.Context, creator *domain.Account, name string, memberIDs []uuid.UUID) (*domain.Chat, error)
}

type ChatService struct {
	log          *slog.Logger
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	txManager    domain.TxManager
	bus          contracts.EventBus
	queue        contracts.NotificationQueue
	chatList     refresher
}

func NewChatService(
	log *slog.Logger,
	chats domain.ChatRepository,
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	txManager domain.TxManager,
	bus contracts.EventBus,
	queue contracts.NotificationQueue,
	chatList refresher,
) *ChatService {
	return &ChatService{
		log:          log,
		chats:        chats,
		participants: participants,
		messages:     messages,
		txManager:    txManager,
		bus:          bus,
		queue:        queue,
		chatList:     chatList,
	}
}

func (s *ChatService) CreateDirectChat(ctx context.Context, creator *domain.Account, otherID uuid.UUID) (*domain.Chat, error) {
	ctx, span := tracer.Start(ctx, "ChatService.CreateDirectChat", trace.WithAttributes(
		attribute.String("creator_id", creator.UserID.String()),
	))
	defer span.End()

	if otherID == uuid.Nil {
		return nil, domain.ValidationError("participant id is required")
	}
	if otherID == creator.UserID {
		return nil, domain.ValidationError("cannot open a direct chat with yourself")
	}
	existing, err := s.chats.FindDirectChat(ctx, creator.UserID, otherID)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "chats - create direct - lookup failed", "creator_id", creator.UserID, "other_id", otherID, "err", err)
		return nil, domain.UnavailableError(err, "chat store unreachable")
	}
	if existing != nil {
		return existing, nil
	}
	chat, err := s.create(ctx, creator, &domain.Chat{Type: domain.ChatDirect}, []uuid.UUID{otherID})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, chat, creator, []uuid.UUID{otherID})
	return chat, nil
}

func (s *ChatService) CreateGroupChat(ctx context.Context, creator *domain.Account, name string, memberIDs []uuid.UUID) (*domain.Chat, error) {
	ctx, span := tracer.Start(ctx, "ChatService.CreateGroupChat", trace.WithAttributes(
		attribute.String("creator_id", creator.UserID.String()),
		attribute.Int("members", len(memberIDs)),
	))
	defer span.End()

	if name == "" {
		return nil, domain.ValidationError("group chat name is required")
	}
	members := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == uuid.Nil || id == creator.UserID {
			continue
		}
		members = append(members, id)
	}
	if len(members) == 0 {
		return nil, domain.ValidationError("group chat needs at least one other member")
	}
	chat, err := s.create(ctx, creator, &domain.Chat{Name: name, Type: domain.ChatGroup}, members)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, chat, creator, members)
	return chat, nil
}

func (s *ChatService) create(ctx context.Context, creator *domain.Account, chat *domain.Chat, members []uuid.UUID) (*domain.Chat, error) {
	now := time.Now().UTC()
	chat.ID = uuid.New()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	seed := &domain.Message{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		SenderID:  creator.UserID,
		Content:   "Chat created",
		Type:      domain.MessageSystem,
		Status:    domain.StatusSent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.chats.CreateChat(txCtx, chat); err != nil {
			return err
		}
		if err := s.participants.AddParticipant(txCtx, &domain.Participant{
			ChatID:   chat.ID,
			UserID:   creator.UserID,
			JoinedAt: now,
			IsAdmin:  true,
			IsActive: true,
		}); err != nil {
			return err
		}
		for _, userID := range members {
			if err := s.participants.AddParticipant(txCtx, &domain.Participant{
				ChatID:   chat.ID,
				UserID:   userID,
				JoinedAt: now,
				IsActive: true,
			}); err != nil {
				return err
			}
		}
		return s.messages.InsertMessage(txCtx, seed)
	}); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.log.ErrorContext(ctx, "chats - create - persist failed", "creator_id", creator.UserID, "type", chat.Type, "err", err)
		return nil, domain.UnavailableError(err, "chat store unreachable")
	}
	s.log.InfoContext(ctx, "chats - create - chat created", "chat_id", chat.ID, "type", chat.Type, "creator_id", creator.UserID)
	return chat, nil
}

// announce publishes the creation to the bus, queues a push for every added
// member and refreshes everyone's chat list. All of it is best-effort.
func (s *ChatService) announce(ctx context.Context, chat *domain.Chat, creator *domain.Account, members []uuid.UUID) {
	participantIDs := make([]string, 0, len(members)+1)
	participantIDs = append(participantIDs, creator.UserID.String())
	for _, id := range members {
		participantIDs = append(participantIDs, id.String())
	}
	if err := s.bus.Publish(ctx, domain.SubjectChatCreated, domain.BusChatCreated{
		ChatID:       chat.ID.String(),
		ChatType:     string(chat.Type),
		CreatorID:    creator.UserID.String(),
		Participants: participantIDs,
		CreatedAt:    chat.CreatedAt,
	}); err != nil {
		s.log.ErrorContext(ctx, "chats - announce - bus publish failed", "chat_id", chat.ID, "err", err)
	}
	title := creator.DisplayName
	body := "added you to a new chat"
	if chat.Type == domain.ChatGroup {
		body = "added you to " + chat.Name
	}
	for _, userID := range members {
		job := domain.NotificationJob{
			UserID: userID.String(),
			Title:  title,
			Body:   body,
			Data: domain.NotificationData{
				EntityID:     chat.ID.String(),
				EntityType:   domain.NotifyChatCreated,
				SenderID:     creator.UserID.String(),
				SenderName:   creator.DisplayName,
				SenderAvatar: creator.AvatarURL,
			},
		}
		raw, err := json.Marshal(job)
		if err != nil {
			s.log.ErrorContext(ctx, "chats - announce - marshal failed", "user_id", userID, "err", err)
			continue
		}
		if err := s.queue.Enqueue(ctx, raw); err != nil {
			s.log.ErrorContext(ctx, "chats - announce - enqueue failed", "chat_id", chat.ID, "user_id", userID, "err", err)
		}
	}
	s.chatList.RefreshForMany(ctx, append(members, creator.UserID))
}
