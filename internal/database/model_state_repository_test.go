package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/janvedha/triage/internal/database"
	"github.com/janvedha/triage/internal/domain"
)

func TestModelStateRepository_LoadActive(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewModelStateRepository(sqlxDB)
	ctx := context.Background()

	columns := []string{"id", "params", "feature_names", "sample_count", "is_active", "trained_at"}

	testCases := []struct {
		name      string
		setupMock func()
		wantState bool
		wantErr   bool
	}{
		{
			name: "returns active state when one exists",
			setupMock: func() {
				rows := sqlmock.NewRows(columns).
					AddRow(int64(3), []byte(`{"weights":[[0.1]]}`), []byte("{severity_base,report_count}"), 120, true, time.Now())
				mock.ExpectQuery("SELECT id, params, feature_names, sample_count, is_active, trained_at").
					WillReturnRows(rows)
			},
			wantState: true,
		},
		{
			name: "returns nil when no active state",
			setupMock: func() {
				mock.ExpectQuery("SELECT id, params, feature_names, sample_count, is_active, trained_at").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "returns error on database failure",
			setupMock: func() {
				mock.ExpectQuery("SELECT id, params, feature_names, sample_count, is_active, trained_at").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			state, callErr := repo.LoadActive(ctx)
			if (callErr != nil) != tc.wantErr {
				t.Errorf("LoadActive() error = %v, wantErr %v", callErr, tc.wantErr)
			}
			if (state != nil) != tc.wantState {
				t.Errorf("LoadActive() state = %+v, wantState %v", state, tc.wantState)
			}
			if tc.wantState && state.SampleCount != 120 {
				t.Errorf("LoadActive() SampleCount = %d, want 120", state.SampleCount)
			}

			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}

func TestModelStateRepository_History(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewModelStateRepository(sqlxDB)
	ctx := context.Background()

	newest := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "params", "feature_names", "sample_count", "is_active", "trained_at"}).
		AddRow(int64(9), []byte(`{"weights":[[0.2]]}`), []byte("{severity_base,report_count}"), 130, true, newest).
		AddRow(int64(8), []byte(`{"weights":[[0.1]]}`), []byte("{severity_base,report_count}"), 120, false, newest.Add(-time.Hour))
	mock.ExpectQuery("ORDER BY trained_at DESC").
		WithArgs(20).
		WillReturnRows(rows)

	states, err := repo.History(ctx, 20)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("History() = %d states, want 2", len(states))
	}
	if states[0].ID != 9 || !states[0].IsActive {
		t.Errorf("newest state = %+v, want active id 9 first", states[0])
	}
	if len(states[1].FeatureNames) != 2 || states[1].FeatureNames[0] != "severity_base" {
		t.Errorf("FeatureNames = %v", states[1].FeatureNames)
	}

	mock.ExpectQuery("ORDER BY trained_at DESC").
		WillReturnError(sql.ErrConnDone)
	if _, err := repo.History(ctx, 20); err == nil {
		t.Error("History() error = nil on database failure")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestModelStateRepository_SaveActive(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewModelStateRepository(sqlxDB)
	ctx := context.Background()

	testCases := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "deactivates old state and inserts the new one in a transaction",
			setupMock: func() {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE model_states SET is_active = FALSE").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery("INSERT INTO model_states").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back when the insert fails",
			setupMock: func() {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE model_states SET is_active = FALSE").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery("INSERT INTO model_states").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			state := &domain.ModelState{
				Params:       []byte(`{"weights":[[0.1]]}`),
				FeatureNames: []string{"severity_base", "report_count"},
				SampleCount:  120,
				TrainedAt:    time.Now(),
			}
			callErr := repo.SaveActive(ctx, state)
			if (callErr != nil) != tc.wantErr {
				t.Errorf("SaveActive() error = %v, wantErr %v", callErr, tc.wantErr)
			}
			if !tc.wantErr {
				if state.ID != 7 {
					t.Errorf("SaveActive() ID = %d, want 7 from RETURNING", state.ID)
				}
				if !state.IsActive {
					t.Error("SaveActive() did not mark the state active")
				}
			}

			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}
