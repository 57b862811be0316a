package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/database"
)

func TestDepartmentRepository_Sync(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewDepartmentRepository(sqlxDB)
	ctx := context.Background()

	departments := []catalog.Department{
		{ID: "D01", Name: "Roads & Bridges", Keywords: []string{"pothole", "road"}, SLADays: 3},
		{ID: "D05", Name: "Solid Waste", Keywords: []string{"garbage"}, SLADays: 2},
	}

	for range departments {
		mock.ExpectExec("INSERT INTO departments").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	if err := repo.Sync(ctx, departments); err != nil {
		t.Errorf("Sync() error = %v", err)
	}

	mock.ExpectExec("INSERT INTO departments").
		WillReturnError(sql.ErrConnDone)
	if err := repo.Sync(ctx, departments[:1]); err == nil {
		t.Error("Sync() error = nil on database failure")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestDepartmentRepository_SLADays(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewDepartmentRepository(sqlxDB)
	ctx := context.Background()

	mock.ExpectQuery("SELECT sla_days FROM departments").
		WithArgs("D01").
		WillReturnRows(sqlmock.NewRows([]string{"sla_days"}).AddRow(3))

	days, err := repo.SLADays(ctx, "D01")
	if err != nil {
		t.Fatalf("SLADays() error = %v", err)
	}
	if days != 3 {
		t.Errorf("SLADays() = %d, want 3", days)
	}

	mock.ExpectQuery("SELECT sla_days FROM departments").
		WithArgs("D99").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.SLADays(ctx, "D99"); err == nil {
		t.Error("SLADays() error = nil for a missing department")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
