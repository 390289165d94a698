package store

import (
	"context"

	"github.com/meta-portal/meta-service/internal/model"
)

const queueColumns = `id, email_id, queue_name, priority_score, execute_after,
	started_at, completed_at, status, worker_id, processing_time_ms, error_message,
	created_at, updated_at`

// CreateQueueEntry inserts a new queue entry.
func (s *Store) CreateQueueEntry(ctx context.Context, q *model.EmailQueueEntry) error {
	query := `
		INSERT INTO email_queue (email_id, queue_name, priority_score, execute_after, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		q.EmailID, q.QueueName, q.PriorityScore, q.ExecuteAfter, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// DueQueueEntries returns up to limit queued entries whose execute_after has
// passed, ordered by priority score descending then earliest scheduled first.
// The ordering holds within one sweep only.
func (s *Store) DueQueueEntries(ctx context.Context, limit int) ([]*model.EmailQueueEntry, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM email_queue
		WHERE status = 'queued' AND execute_after <= now()
		ORDER BY priority_score DESC, execute_after ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.EmailQueueEntry
	for rows.Next() {
		q := &model.EmailQueueEntry{}
		err := rows.Scan(
			&q.ID, &q.EmailID, &q.QueueName, &q.PriorityScore, &q.ExecuteAfter,
			&q.StartedAt, &q.CompletedAt, &q.Status, &q.WorkerID, &q.ProcessingTimeMs,
			&q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, q)
	}
	return entries, rows.Err()
}

// ClaimQueueEntry atomically moves an entry from queued to processing. The
// conditional update plus affected-row check is what keeps concurrent sweeps
// from double-sending: only one worker's claim lands.
func (s *Store) ClaimQueueEntry(ctx context.Context, id int64, workerID string) (bool, error) {
	query := `
		UPDATE email_queue
		SET status = 'processing', worker_id = $2, started_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'queued'
	`
	result, err := s.db.ExecContext(ctx, query, id, workerID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// FinishQueueEntry records the outcome of a processed entry.
func (s *Store) FinishQueueEntry(ctx context.Context, q *model.EmailQueueEntry) error {
	query := `
		UPDATE email_queue
		SET status = $2, completed_at = $3, processing_time_ms = $4, error_message = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		q.ID, q.Status, q.CompletedAt, q.ProcessingTimeMs, q.ErrorMessage,
	).Scan(&q.UpdatedAt)
}
