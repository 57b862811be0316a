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

// ModelStateRepository handles database operations for online-model states.
type ModelStateRepository struct {
	db *sqlx.DB
}

// NewModelStateRepository creates a new model state repository.
func NewModelStateRepository(db *sqlx.DB) *ModelStateRepository {
	return &ModelStateRepository{db: db}
}

// LoadActive returns the single active model state, or nil when none exists.
func (r *ModelStateRepository) LoadActive(ctx context.Context) (*domain.ModelState, error) {
	query := `
		SELECT id, params, feature_names, sample_count, is_active, trained_at
		FROM model_states
		WHERE is_active
		LIMIT 1
	`

	var state domain.ModelState
	err := r.db.QueryRowContext(ctx, query).Scan(
		&state.ID,
		&state.Params,
		pq.Array(&state.FeatureNames),
		&state.SampleCount,
		&state.IsActive,
		&state.TrainedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load active model state: %w", err)
	}

	return &state, nil
}

// SaveActive inserts the state as active and deactivates any previous active
// state in the same transaction. Old states are retained for auditability.
func (r *ModelStateRepository) SaveActive(ctx context.Context, state *domain.ModelState) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin model state transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `UPDATE model_states SET is_active = FALSE WHERE is_active`); err != nil {
		return fmt.Errorf("failed to deactivate previous model state: %w", err)
	}

	insert := `
		INSERT INTO model_states (params, feature_names, sample_count, is_active, trained_at)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insert,
		state.Params,
		pq.Array(state.FeatureNames),
		state.SampleCount,
		state.TrainedAt,
	).Scan(&state.ID)
	if err != nil {
		return fmt.Errorf("failed to insert model state: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model state: %w", err)
	}
	state.IsActive = true
	return nil
}

// History returns the most recent states, newest first.
func (r *ModelStateRepository) History(ctx context.Context, limit int) ([]*domain.ModelState, error) {
	query := `
		SELECT id, params, feature_names, sample_count, is_active, trained_at
		FROM model_states
		ORDER BY trained_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list model states: %w", err)
	}
	defer rows.Close()

	var states []*domain.ModelState
	for rows.Next() {
		var state domain.ModelState
		if err := rows.Scan(
			&state.ID,
			&state.Params,
			pq.Array(&state.FeatureNames),
			&state.SampleCount,
			&state.IsActive,
			&state.TrainedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan model state: %w", err)
		}
		states = append(states, &state)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model states: %w", err)
	}

	return states, nil
}
