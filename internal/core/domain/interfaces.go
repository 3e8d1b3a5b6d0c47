package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatRepository handles conversation rows and the aggregate inbox query.
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *Chat) error
	GetChatByID(ctx context.Context, chatID uuid.UUID) (*Chat, error)
	// TouchUpdatedAt bumps the conversation's updated_at after a send.
	TouchUpdatedAt(ctx context.Context, chatID uuid.UUID, at time.Time) error
	// FindDirectChat returns the existing DIRECT chat between two users, or nil.
	FindDirectChat(ctx context.Context, a, b uuid.UUID) (*Chat, error)
	// ListSummariesForUser returns one summary per active chat of the user,
	// each carrying the most recent message and the user's unread count.
	ListSummariesForUser(ctx context.Context, userID uuid.UUID) ([]ChatSummary, error)
}

// ParticipantRepository handles chat membership records.
type ParticipantRepository interface {
	AddParticipant(ctx context.Context, p *Participant) error
	IsActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	ListActiveUserIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error)
	// OtherUserID resolves the counterpart of a two-party chat.
	OtherUserID(ctx context.Context, chatID, userID uuid.UUID) (uuid.UUID, error)
	IncrementUnread(ctx context.Context, chatID, exceptUserID uuid.UUID) error
	ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error
}

// MessageRepository handles message persistence and the coarse status
// progression. Per-conversation write order is the storage layer's concern.
type MessageRepository interface {
	InsertMessage(ctx context.Context, m *Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]Message, error)
	// AdvanceStatus moves every message of the chat currently in `from` to
	// `to` and returns the affected ids. A second call finds nothing.
	AdvanceStatus(ctx context.Context, chatID uuid.UUID, from, to MessageStatus) ([]uuid.UUID, error)
}

// ReadReceiptRepository records the idempotent per-(message, user) read fact.
type ReadReceiptRepository interface {
	// InsertIfAbsent returns true when the receipt was newly created.
	InsertIfAbsent(ctx context.Context, messageID, userID uuid.UUID, at time.Time) (bool, error)
}

// TxManager scopes a function to one storage transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
