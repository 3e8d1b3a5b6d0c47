package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatType string

const (
	ChatDirect  ChatType = "DIRECT"
	ChatGroup   ChatType = "GROUP"
	ChatChannel ChatType = "CHANNEL"
)

type MessageType string

const (
	MessageText     MessageType = "TEXT"
	MessageImage    MessageType = "IMAGE"
	MessageAudio    MessageType = "AUDIO"
	MessageVideo    MessageType = "VIDEO"
	MessageFile     MessageType = "FILE"
	MessageLocation MessageType = "LOCATION"
	MessageSystem   MessageType = "SYSTEM"
)

type MessageStatus string

const (
	StatusPending   MessageStatus = "PENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
)

type NotificationType string

const (
	NotifyChatCreated NotificationType = "CHAT_CREATED"
	NotifyNewMessage  NotificationType = "NEW_MESSAGE"
)

// Chat is one conversation, direct or group.
type Chat struct {
	ID        uuid.UUID
	Name      string
	AvatarURL string
	Type      ChatType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant links a user to a chat. A user can send and receive in a chat
// only while IsActive is true.
type Participant struct {
	ChatID      uuid.UUID
	UserID      uuid.UUID
	JoinedAt    time.Time
	IsAdmin     bool
	IsActive    bool
	LeftAt      *time.Time
	UnreadCount int
}

// Message content is immutable after insert; only Status advances.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	MediaURLs []string
	Type      MessageType
	Status    MessageStatus
	Duration  int // seconds, audio only
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadReceipt exists at most once per (message, user) pair.
type ReadReceipt struct {
	MessageID uuid.UUID
	UserID    uuid.UUID
	ReadAt    time.Time
}

// Account is the identity resolved by the account oracle at handshake time.
type Account struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
}

// ChatSummary is one row of a user's aggregate inbox view.
type ChatSummary struct {
	ChatID      uuid.UUID
	Name        string
	AvatarURL   string
	Type        ChatType
	LastMessage *Message
	UnreadCount int
	UpdatedAt   time.Time
}
