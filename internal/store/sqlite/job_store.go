package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

// RecordJobEnqueue inserts a bookkeeping row for a freshly enqueued task.
func (s *Store) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO jobs (id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	var relatedType sql.NullString
	if params.RelatedEntityType != "" {
		relatedType = sql.NullString{String: params.RelatedEntityType, Valid: true}
	}
	var relatedID sql.NullInt64
	if params.RelatedEntityID != 0 {
		relatedID = sql.NullInt64{Int64: params.RelatedEntityID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		params.JobID.String(), params.TaskType, params.Payload, params.Queue,
		params.Status, relatedType, relatedID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", params.JobID, err)
	}
	return nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), jobID.String())
	if err != nil {
		return fmt.Errorf("failed to update status of job %s: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RecordJobFailure marks a job failed and keeps the error message.
func (s *Store) RecordJobFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		models.JobStatusFailed, message, time.Now(), jobID.String())
	if err != nil {
		return fmt.Errorf("failed to record failure of job %s: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, task_type, payload, queue, status, last_error, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BackgroundJob
	for rows.Next() {
		job := &models.BackgroundJob{}
		var id string
		err := rows.Scan(&id, &job.TaskType, &job.Payload, &job.Queue,
			&job.Status, &job.LastError, &job.CreatedAt, &job.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		if job.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse job id %q: %w", id, err)
		}
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// Ensure Store satisfies the JobStore interface.
var _ store.JobStore = (*Store)(nil)
