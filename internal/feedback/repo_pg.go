package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

func (r *PGRepo) Create(ctx context.Context, f Feedback) (Feedback, error) {
	const query = `
INSERT INTO feedback (id, user_id, rating, message, page, document_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	if err := r.DB.QueryRowContext(ctx, query, f.ID, f.UserID, f.Rating, f.Message, f.Page, f.DocumentID).Scan(&f.CreatedAt); err != nil {
		return Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return f, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, user_id, rating, message, page, document_id, created_at, priority, triaged_at
FROM feedback
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var (
			f         Feedback
			priority  string
			triagedAt sql.NullTime
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Rating, &f.Message, &f.Page, &f.DocumentID, &f.CreatedAt, &priority, &triagedAt); err != nil {
			return nil, err
		}
		f.Priority = Priority(priority)
		if triagedAt.Valid {
			t := triagedAt.Time.UTC()
			f.TriagedAt = &t
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkTriaged(ctx context.Context, id string, priority Priority, at time.Time) error {
	const query = `UPDATE feedback SET priority = $2, triaged_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, string(priority), at.UTC())
	if err != nil {
		return fmt.Errorf("mark feedback triaged: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark feedback triaged: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
