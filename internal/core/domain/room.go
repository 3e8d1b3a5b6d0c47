package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Room is a logical broadcast channel. The two naming schemes are part of the
// external client contract and must not change:
//
//	Chat_<chatId>          one conversation
//	user_<userId>_chats    a user's chat-list surface
type Room string

func ChatRoom(chatID uuid.UUID) Room {
	return Room("Chat_" + chatID.String())
}

func ChatListRoom(userID uuid.UUID) Room {
	return Room("user_" + userID.String() + "_chats")
}

// ChatID extracts the conversation id from a chat room name.
func (r Room) ChatID() (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(string(r), "Chat_")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsChatList reports whether the room is a chat-list surface.
func (r Room) IsChatList() bool {
	return strings.HasPrefix(string(r), "user_") && strings.HasSuffix(string(r), "_chats")
}
