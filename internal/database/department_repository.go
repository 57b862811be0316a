package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/janvedha/triage/internal/catalog"
)

// DepartmentRepository mirrors the department catalogue into the database so
// SLA lookups and reporting joins work without the application present.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new department repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// EnsureTable creates the departments table.
func (r *DepartmentRepository) EnsureTable(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS departments (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			keywords TEXT[] NOT NULL DEFAULT '{}',
			sla_days INTEGER NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create departments table: %w", err)
	}
	return nil
}

// Sync upserts the catalogue's departments.
func (r *DepartmentRepository) Sync(ctx context.Context, departments []catalog.Department) error {
	query := `
		INSERT INTO departments (id, name, keywords, sla_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    keywords = EXCLUDED.keywords,
		    sla_days = EXCLUDED.sla_days
	`

	for _, d := range departments {
		if _, err := r.db.ExecContext(ctx, query, d.ID, d.Name, pq.Array(d.Keywords), d.SLADays); err != nil {
			return fmt.Errorf("failed to sync department %s: %w", d.ID, err)
		}
	}
	return nil
}

// SLADays returns the department's SLA in days.
func (r *DepartmentRepository) SLADays(ctx context.Context, deptID string) (int, error) {
	var days int
	if err := r.db.QueryRowContext(ctx, `SELECT sla_days FROM departments WHERE id = $1`, deptID).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to look up SLA for %s: %w", deptID, err)
	}
	return days, nil
}
