package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSubmissionNotFound = errors.New("submission not found")

type Submission struct {
	ID          int64
	Kind        string
	Payload     json.RawMessage
	Delivered   bool
	SendError   string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// SubmissionRepo archives mail submissions (bug reports, interview requests).
type SubmissionRepo struct {
	db *pgxpool.Pool
}

func NewSubmissionRepo(db *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) Save(ctx context.Context, kind string, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", kind, err)
	}
	const q = `INSERT INTO submissions (kind, payload) VALUES ($1, $2) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, q, kind, body).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return id, nil
}

// MarkDelivered records the outcome of the single send attempt.
func (r *SubmissionRepo) MarkDelivered(ctx context.Context, id int64, sendErr error) error {
	const q = `
UPDATE submissions
   SET delivered = $2,
       send_error = $3,
       delivered_at = CASE WHEN $2 THEN now() ELSE NULL END
 WHERE id = $1`

	var errText *string
	if sendErr != nil {
		s := sendErr.Error()
		errText = &s
	}
	tag, err := r.db.Exec(ctx, q, id, sendErr == nil, errText)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepo) Get(ctx context.Context, id int64) (*Submission, error) {
	const q = `
SELECT id, kind, payload, delivered, COALESCE(send_error, ''), created_at, delivered_at
  FROM submissions
 WHERE id = $1`

	var s Submission
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.Kind, &s.Payload, &s.Delivered, &s.SendError, &s.CreatedAt, &s.DeliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select submission: %w", err)
	}
	return &s, nil
}

// ListRecent returns the newest submissions of a kind.
func (r *SubmissionRepo) ListRecent(ctx context.Context, kind string, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `
SELECT id, kind, payload, delivered, COALESCE(send_error, ''), created_at, delivered_at
  FROM submissions
 WHERE kind = $1
 ORDER BY created_at DESC, id DESC
 LIMIT $2`

	rows, err := r.db.Query(ctx, q, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]Submission, 0, limit)
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.Kind, &s.Payload, &s.Delivered, &s.SendError, &s.CreatedAt, &s.DeliveredAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
