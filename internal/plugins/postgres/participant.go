package postgres

import (
	"context"
	"database/sql"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

type ParticipantRepo struct {
	db *sql.DB
}

func NewParticipantRepo(db *sql.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

func (r *ParticipantRepo) AddParticipant(ctx context.Context, p *domain.Participant) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO chat_participants (
			chat_id, user_id, joined_at, is_admin, is_active, unread_count
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id, user_id) DO UPDATE
		SET is_active = EXCLUDED.is_active, left_at = NULL
	`,
		p.ChatID,
		p.UserID,
		p.JoinedAt,
		p.IsAdmin,
		p.IsActive,
		p.UnreadCount,
	)
	return err
}

func (r *ParticipantRepo) IsActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat_participants
			WHERE chat_id = $1 AND user_id = $2 AND is_active
		)
	`, chatID, userID)
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *ParticipantRepo) ListActiveUserIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT user_id FROM chat_participants
		WHERE chat_id = $1 AND is_active
	`, chatID)
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

func (r *ParticipantRepo) OtherUserID(ctx context.Context, chatID, userID uuid.UUID) (uuid.UUID, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT user_id FROM chat_participants
		WHERE chat_id = $1 AND user_id <> $2
		LIMIT 1
	`, chatID, userID)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, domain.NotFoundError("participant not found")
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *ParticipantRepo) IncrementUnread(ctx context.Context, chatID, exceptUserID uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		UPDATE chat_participants
		SET unread_count = unread_count + 1
		WHERE chat_id = $1 AND user_id <> $2 AND is_active
	`, chatID, exceptUserID)
	return err
}

func (r *ParticipantRepo) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		UPDATE chat_participants
		SET unread_count = 0
		WHERE chat_id = $1 AND user_id = $2
	`, chatID, userID)
	return err
}
