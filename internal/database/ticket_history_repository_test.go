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

func TestTicketHistoryRepository_Record(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewTicketHistoryRepository(sqlxDB)
	ctx := context.Background()

	rec := domain.TicketRecord{TicketID: "T-100", WardID: 7, IssueCategory: "pothole", CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO ticket_history").
		WithArgs(rec.TicketID, rec.WardID, rec.IssueCategory, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Record(ctx, rec); err != nil {
		t.Errorf("Record() error = %v", err)
	}

	mock.ExpectExec("INSERT INTO ticket_history").
		WillReturnError(sql.ErrConnDone)
	if err := repo.Record(ctx, rec); err == nil {
		t.Error("Record() error = nil on database failure")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestTicketHistoryRepository_TicketsSince(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := database.NewTicketHistoryRepository(sqlxDB)
	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"ticket_id", "ward_id", "issue_category", "created_at"}).
		AddRow("T-1", 7, "flooding", since.AddDate(0, 0, 1)).
		AddRow("T-2", 7, "flooding", since.AddDate(0, 0, 2))
	mock.ExpectQuery("SELECT ticket_id, ward_id, issue_category, created_at").
		WithArgs(7, "flooding", since).
		WillReturnRows(rows)

	records, err := repo.TicketsSince(context.Background(), 7, "flooding", since)
	if err != nil {
		t.Fatalf("TicketsSince() error = %v", err)
	}
	if len(records) != 2 || records[0].TicketID != "T-1" {
		t.Errorf("TicketsSince() = %+v", records)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
