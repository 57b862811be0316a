package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/janvedha/triage/internal/domain"
)

// TicketHistoryRepository records the per-ticket slice the spike forecaster
// trains on.
type TicketHistoryRepository struct {
	db *sqlx.DB
}

// NewTicketHistoryRepository creates a new ticket history repository.
func NewTicketHistoryRepository(db *sqlx.DB) *TicketHistoryRepository {
	return &TicketHistoryRepository{db: db}
}

// Record stores one ticket sighting. Re-recording the same ticket updates
// its attributes instead of failing.
func (r *TicketHistoryRepository) Record(ctx context.Context, rec domain.TicketRecord) error {
	query := `
		INSERT INTO ticket_history (ticket_id, ward_id, issue_category, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticket_id) DO UPDATE
		SET ward_id = EXCLUDED.ward_id,
		    issue_category = EXCLUDED.issue_category
	`

	if _, err := r.db.ExecContext(ctx, query, rec.TicketID, rec.WardID, rec.IssueCategory, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to record ticket history: %w", err)
	}
	return nil
}

// TicketsSince returns the pair's tickets created at or after since,
// oldest first.
func (r *TicketHistoryRepository) TicketsSince(ctx context.Context, wardID int, category string, since time.Time) ([]domain.TicketRecord, error) {
	query := `
		SELECT ticket_id, ward_id, issue_category, created_at
		FROM ticket_history
		WHERE ward_id = $1 AND issue_category = $2 AND created_at >= $3
		ORDER BY created_at ASC
	`

	var records []domain.TicketRecord
	if err := r.db.SelectContext(ctx, &records, query, wardID, category, since); err != nil {
		return nil, fmt.Errorf("failed to query ticket history: %w", err)
	}
	return records, nil
}
