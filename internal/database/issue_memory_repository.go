package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/janvedha/triage/internal/domain"
)

// IssueMemoryRepository handles database operations for issue-memory records.
type IssueMemoryRepository struct {
	db *sqlx.DB
}

// NewIssueMemoryRepository creates a new issue memory repository.
func NewIssueMemoryRepository(db *sqlx.DB) *IssueMemoryRepository {
	return &IssueMemoryRepository{db: db}
}

const issueMemoryColumns = `
	id, ward_id, issue_category, dept_id, month, year,
	occurrence_count, avg_severity_score, keywords, sample_ticket_ids,
	last_seen_description, created_at, updated_at
`

func scanIssueMemory(row interface {
	Scan(dest ...any) error
}) (*domain.IssueMemoryRecord, error) {
	var rec domain.IssueMemoryRecord
	err := row.Scan(
		&rec.ID,
		&rec.WardID,
		&rec.IssueCategory,
		&rec.DeptID,
		&rec.Month,
		&rec.Year,
		&rec.OccurrenceCount,
		&rec.AvgSeverityScore,
		pq.Array(&rec.Keywords),
		pq.Array(&rec.SampleTicketIDs),
		&rec.LastSeenDescription,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Find returns the record for (ward, category, month, year), or nil when no
// record exists.
func (r *IssueMemoryRepository) Find(ctx context.Context, wardID int, category string, month, year int) (*domain.IssueMemoryRecord, error) {
	query := `
		SELECT ` + issueMemoryColumns + `
		FROM issue_memories
		WHERE ward_id = $1 AND issue_category = $2 AND month = $3 AND year = $4
	`

	rec, err := scanIssueMemory(r.db.QueryRowContext(ctx, query, wardID, category, month, year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find issue memory: %w", err)
	}
	return rec, nil
}

// Insert creates a new record.
func (r *IssueMemoryRepository) Insert(ctx context.Context, rec *domain.IssueMemoryRecord) error {
	query := `
		INSERT INTO issue_memories (
			ward_id, issue_category, dept_id, month, year,
			occurrence_count, avg_severity_score, keywords, sample_ticket_ids,
			last_seen_description, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		rec.WardID,
		rec.IssueCategory,
		rec.DeptID,
		rec.Month,
		rec.Year,
		rec.OccurrenceCount,
		rec.AvgSeverityScore,
		pq.Array(rec.Keywords),
		pq.Array(rec.SampleTicketIDs),
		rec.LastSeenDescription,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert issue memory: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing record.
func (r *IssueMemoryRepository) Update(ctx context.Context, rec *domain.IssueMemoryRecord) error {
	query := `
		UPDATE issue_memories
		SET occurrence_count = $1,
		    avg_severity_score = $2,
		    sample_ticket_ids = $3,
		    last_seen_description = $4,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.OccurrenceCount,
		rec.AvgSeverityScore,
		pq.Array(rec.SampleTicketIDs),
		rec.LastSeenDescription,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue memory: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("issue memory %d not found", rec.ID)
	}
	return nil
}

// PriorYearOccurrences sums occurrence counts for (ward, category, month)
// across years strictly before beforeYear.
func (r *IssueMemoryRepository) PriorYearOccurrences(ctx context.Context, wardID int, category string, month, beforeYear int) (int, error) {
	query := `
		SELECT COALESCE(SUM(occurrence_count), 0)
		FROM issue_memories
		WHERE ward_id = $1 AND issue_category = $2 AND month = $3 AND year < $4
	`

	var total int
	if err := r.db.QueryRowContext(ctx, query, wardID, category, month, beforeYear).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum prior-year occurrences: %w", err)
	}
	return total, nil
}

// SeasonalAlerts aggregates prior-year records per issue category for a
// (ward, month) key, most frequent first.
func (r *IssueMemoryRepository) SeasonalAlerts(ctx context.Context, wardID, month, beforeYear int) ([]domain.SeasonalAlert, error) {
	query := `
		SELECT issue_category,
		       MAX(dept_id) AS dept_id,
		       SUM(occurrence_count) AS occurrence_count,
		       COALESCE(AVG(avg_severity_score), 0) AS avg_severity_score,
		       MAX(year) AS last_seen_year
		FROM issue_memories
		WHERE ward_id = $1 AND month = $2 AND year < $3
		GROUP BY issue_category
		ORDER BY occurrence_count DESC
	`

	rows, err := r.db.QueryContext(ctx, query, wardID, month, beforeYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasonal alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.SeasonalAlert
	for rows.Next() {
		var a domain.SeasonalAlert
		if err := rows.Scan(
			&a.IssueCategory,
			&a.DeptID,
			&a.OccurrenceCount,
			&a.AvgSeverityScore,
			&a.LastSeenYear,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seasonal alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasonal alerts: %w", err)
	}

	return alerts, nil
}
