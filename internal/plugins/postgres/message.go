package postgres

import (
	"context"
	"database/sql"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) InsertMessage(ctx context.Context, m *domain.Message) error {
	if m.ChatID == uuid.Nil {
		return domain.ValidationError("invalid chat id")
	}
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO messages (
			message_id, chat_id, sender_id, content, media_urls, type, status, duration, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		m.ID,
		m.ChatID,
		m.SenderID,
		m.Content,
		stringList(m.MediaURLs),
		m.Type,
		m.Status,
		m.Duration,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MessageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT message_id, chat_id, sender_id, content, media_urls, type, status, duration, created_at, updated_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var media stringList
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.SenderID,
			&m.Content,
			&media,
			&m.Type,
			&m.Status,
			&m.Duration,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.MediaURLs = media
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) AdvanceStatus(ctx context.Context, chatID uuid.UUID, from, to domain.MessageStatus) ([]uuid.UUID, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		UPDATE messages
		SET status = $3, updated_at = now()
		WHERE chat_id = $1 AND status = $2
		RETURNING message_id
	`, chatID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
