package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

// RecordUsage inserts one usage log entry, assigning an ID and timestamp
// when the caller left them zero.
func (s *Store) RecordUsage(ctx context.Context, rec *models.UsageRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO usage_log (id, provider, model, operation, input_tokens, output_tokens, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Provider, rec.Model, rec.Operation,
		rec.InputTokens, rec.OutputTokens, rec.CostUSD, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

func (s *Store) ListUsage(ctx context.Context, limit, offset int) ([]*models.UsageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, provider, model, operation, input_tokens, output_tokens, cost_usd, created_at
		FROM usage_log
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []*models.UsageRecord
	for rows.Next() {
		rec := &models.UsageRecord{}
		var id string
		err := rows.Scan(&id, &rec.Provider, &rec.Model, &rec.Operation,
			&rec.InputTokens, &rec.OutputTokens, &rec.CostUSD, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse usage record id %q: %w", id, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}
	return records, nil
}

// UsageSummary returns the total cost and token usage across all calls.
func (s *Store) UsageSummary(ctx context.Context) (totalCost float64, totalInputTokens, totalOutputTokens int64, err error) {
	query := `
		SELECT
			COALESCE(SUM(cost_usd), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0)
		FROM usage_log`

	err = s.db.QueryRowContext(ctx, query).Scan(&totalCost, &totalInputTokens, &totalOutputTokens)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return totalCost, totalInputTokens, totalOutputTokens, nil
}

// Ensure Store satisfies the UsageStore interface.
var _ store.UsageStore = (*Store)(nil)
