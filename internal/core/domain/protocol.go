package domain

import (
	"encoding/json"
	"time"
)

// Client commands. The action set is closed; the gateway rejects anything
// outside it instead of resolving handlers dynamically.
const (
	ActionJoinChat      = "join_chat"
	ActionLeaveChat     = "leave_chat"
	ActionSendMessage   = "send_message"
	ActionMarkRead      = "mark_read"
	ActionUserTyping    = "user_typing"
	ActionJoinChatList  = "join_chat_list"
	ActionLeaveChatList = "leave_chat_list"
)

// Server events.
const (
	EventConnected        = "connected"
	EventChatMessages     = "chat_messages"
	EventNewMessage       = "new_message"
	EventMessageSent      = "message_sent"
	EventMessageDelivered = "message_delivered"
	EventMessagesRead     = "messages_read"
	EventChatsListUpdated = "chats_list_updated"
	EventUserTyping       = "user_typing"
	EventError            = "error"
)

// Outbound bus subjects.
const (
	SubjectMessageSent = "chat.message.sent"
	SubjectMessageRead = "chat.message.read"
	SubjectChatCreated = "chat.created"
)

// CommandEnvelope is the inbound frame: a fixed action tag plus the raw
// payload, decoded into the matching command struct by the gateway.
type CommandEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type JoinChatCommand struct {
	ChatID string `json:"chat_id"`
}

type LeaveChatCommand struct {
	ChatID string `json:"chat_id"`
}

type SendMessageCommand struct {
	ChatID    string      `json:"chat_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	MediaURLs []string    `json:"media_urls,omitempty"`
	Duration  int         `json:"duration,omitempty"`
}

type MarkReadCommand struct {
	ChatID     string   `json:"chat_id"`
	MessageIDs []string `json:"message_ids"`
}

type TypingCommand struct {
	ChatID   string `json:"chat_id"`
	IsTyping bool   `json:"is_typing"`
}

// EventEnvelope is the outbound frame.
type EventEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type ConnectedEvent struct {
	UserID string `json:"user_id"`
}

type MessagePayload struct {
	MessageID string    `json:"message_id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	MediaURLs []string  `json:"media_urls,omitempty"`
	Duration  int       `json:"duration,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessagePayload(m *Message) MessagePayload {
	return MessagePayload{
		MessageID: m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		Content:   m.Content,
		Type:      string(m.Type),
		Status:    string(m.Status),
		MediaURLs: m.MediaURLs,
		Duration:  m.Duration,
		CreatedAt: m.CreatedAt,
	}
}

type ChatMessagesEvent struct {
	ChatID   string           `json:"chat_id"`
	Messages []MessagePayload `json:"messages"`
}

type MessageSentEvent struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type MessageDeliveredEvent struct {
	MessageID   string `json:"message_id"`
	DeliveredTo string `json:"delivered_to"`
	Status      string `json:"status"`
}

type MessagesReadEvent struct {
	ChatID     string    `json:"chat_id"`
	UserID     string    `json:"user_id"`
	MessageIDs []string  `json:"message_ids"`
	ReadAt     time.Time `json:"read_at"`
}

type ChatSummaryPayload struct {
	ChatID      string          `json:"chat_id"`
	Name        string          `json:"name"`
	AvatarURL   string          `json:"avatar_url"`
	Type        string          `json:"type"`
	LastMessage *MessagePayload `json:"last_message,omitempty"`
	UnreadCount int             `json:"unread_count"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ChatListSnapshot struct {
	UserID    string               `json:"user_id"`
	Chats     []ChatSummaryPayload `json:"chats"`
	Timestamp time.Time            `json:"timestamp"`
}

type TypingEvent struct {
	ChatID   string `json:"chat_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type ErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NotificationData rides along with every push so the client can deep-link.
type NotificationData struct {
	EntityID     string           `json:"entity_id"`
	EntityType   NotificationType `json:"entity_type"`
	SenderID     string           `json:"sender_id"`
	SenderName   string           `json:"sender_name"`
	SenderAvatar string           `json:"sender_avatar"`
}

// NotificationJob is the unit queued for the notification worker.
type NotificationJob struct {
	UserID string           `json:"user_id"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   NotificationData `json:"data"`
}

// Bus payloads, one concrete type per event kind.
type BusMessageSent struct {
	MessageID string    `json:"message_id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type BusMessageRead struct {
	ChatID     string    `json:"chat_id"`
	UserID     string    `json:"user_id"`
	MessageIDs []string  `json:"message_ids"`
	ReadAt     time.Time `json:"read_at"`
}

type BusChatCreated struct {
	ChatID       string    `json:"chat_id"`
	ChatType     string    `json:"chat_type"`
	CreatorID    string    `json:"creator_id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}
