package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type ReadReceiptRepo struct {
	db *sql.DB
}

func NewReadReceiptRepo(db *sql.DB) *ReadReceiptRepo {
	return &ReadReceiptRepo{db: db}
}

// InsertIfAbsent records the read fact at most once per (message, user).
// Re-marking is silent success; the caller learns whether this call created
// the receipt.
func (r *ReadReceiptRepo) InsertIfAbsent(ctx context.Context, messageID, userID uuid.UUID, at time.Time) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		INSERT INTO message_reads (message_id, user_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, messageID, userID, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
