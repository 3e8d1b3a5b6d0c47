package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) CreateChat(ctx context.Context, chat *domain.Chat) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO chats (
			chat_id, name, avatar_url, chat_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		chat.ID,
		chat.Name,
		chat.AvatarURL,
		chat.Type,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	return err
}

func (r *ChatRepo) GetChatByID(ctx context.Context, chatID uuid.UUID) (*domain.Chat, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT chat_id, name, avatar_url, chat_type, created_at, updated_at
		FROM chats
		WHERE chat_id = $1
	`, chatID)
	var c domain.Chat
	err := row.Scan(&c.ID, &c.Name, &c.AvatarURL, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepo) TouchUpdatedAt(ctx context.Context, chatID uuid.UUID, at time.Time) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		UPDATE chats SET updated_at = $2 WHERE chat_id = $1
	`, chatID, at)
	return err
}

func (r *ChatRepo) FindDirectChat(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT c.chat_id, c.name, c.avatar_url, c.chat_type, c.created_at, c.updated_at
		FROM chats c
		WHERE c.chat_type = 'DIRECT'
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = c.chat_id AND user_id = $1)
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = c.chat_id AND user_id = $2)
		LIMIT 1
	`, a, b)
	var c domain.Chat
	err := row.Scan(&c.ID, &c.Name, &c.AvatarURL, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepo) ListSummariesForUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT c.chat_id, c.name, c.avatar_url, c.chat_type, c.updated_at, cp.unread_count,
		       m.message_id, m.sender_id, m.content, m.type, m.status, m.duration, m.created_at
		FROM chats c
		JOIN chat_participants cp
		  ON cp.chat_id = c.chat_id AND cp.user_id = $1 AND cp.is_active
		LEFT JOIN LATERAL (
			SELECT message_id, sender_id, content, type, status, duration, created_at
			FROM messages
			WHERE chat_id = c.chat_id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var summaries []domain.ChatSummary
	for rows.Next() {
		var s domain.ChatSummary
		var msgID, senderID uuid.NullUUID
		var content, mtype, status sql.NullString
		var duration sql.NullInt64
		var createdAt sql.NullTime
		if err := rows.Scan(
			&s.ChatID,
			&s.Name,
			&s.AvatarURL,
			&s.Type,
			&s.UpdatedAt,
			&s.UnreadCount,
			&msgID,
			&senderID,
			&content,
			&mtype,
			&status,
			&duration,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if msgID.Valid {
			s.LastMessage = &domain.Message{
				ID:        msgID.UUID,
				ChatID:    s.ChatID,
				SenderID:  senderID.UUID,
				Content:   content.String,
				Type:      domain.MessageType(mtype.String),
				Status:    domain.MessageStatus(status.String),
				Duration:  int(duration.Int64),
				CreatedAt: createdAt.Time,
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
