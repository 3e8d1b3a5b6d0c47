package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type IChatListService interface {
	// RefreshFor pushes a fresh inbox snapshot to the user's chat-list room.
	RefreshFor(ctx context.Context, userID uuid.UUID) error
	// RefreshForMany refreshes each user independently; one failing user
	// never blocks the others.
	RefreshForMany(ctx context.Context, userIDs []uuid.UUID)
}

type ChatListService struct {
	log          *slog.Logger
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	oracle       contracts.AccountOracle
	transport    contracts.GroupTransport
}

func NewChatListService(
	log *slog.Logger,
	chats domain.ChatRepository,
	participants domain.ParticipantRepository,
	oracle contracts.AccountOracle,
	transport contracts.GroupTransport,
) *ChatListService {
	return &ChatListService{
		log:          log,
		chats:        chats,
		participants: participants,
		oracle:       oracle,
		transport:    transport,
	}
}

func (s *ChatListService) RefreshFor(ctx context.Context, userID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "ChatListService.RefreshFor", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	summaries, err := s.chats.ListSummariesForUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "chatlist - refresh - list summaries failed", "user_id", userID, "err", err)
		return domain.UnavailableError(err, "chat store unreachable")
	}
	payloads := make([]domain.ChatSummaryPayload, 0, len(summaries))
	for _, sum := range summaries {
		p := domain.ChatSummaryPayload{
			ChatID:      sum.ChatID.String(),
			Name:        sum.Name,
			AvatarURL:   sum.AvatarURL,
			Type:        string(sum.Type),
			UnreadCount: sum.UnreadCount,
			UpdatedAt:   sum.UpdatedAt,
		}
		if sum.LastMessage != nil {
			mp := domain.NewMessagePayload(sum.LastMessage)
			p.LastMessage = &mp
		}
		if sum.Type == domain.ChatDirect {
			// Direct chats carry no name of their own; show the counterpart.
			// A failed lookup degrades to the stored fields, never an error.
			if other, err := s.participants.OtherUserID(ctx, sum.ChatID, userID); err == nil {
				if account, err := s.oracle.GetUser(ctx, other.String()); err == nil {
					p.Name = account.DisplayName
					p.AvatarURL = account.AvatarURL
				} else {
					s.log.WarnContext(ctx, "chatlist - refresh - counterpart lookup failed", "chat_id", sum.ChatID, "user_id", other, "err", err)
				}
			}
		}
		payloads = append(payloads, p)
	}
	snapshot := domain.ChatListSnapshot{
		UserID:    userID.String(),
		Chats:     payloads,
		Timestamp: time.Now().UTC(),
	}
	s.transport.ToGroup(ctx, domain.ChatListRoom(userID), domain.EventChatsListUpdated, snapshot)
	return nil
}

func (s *ChatListService) RefreshForMany(ctx context.Context, userIDs []uuid.UUID) {
	// Refreshes outlive the triggering command's connection.
	ctx = context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := s.RefreshFor(ctx, id); err != nil {
				s.log.ErrorContext(ctx, "chatlist - refresh many - user refresh failed", "user_id", id, "err", err)
			}
		}(userID)
	}
	wg.Wait()
}
