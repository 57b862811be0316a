package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/janvedha/triage/internal/config"
	"github.com/janvedha/triage/internal/database"
	"github.com/janvedha/triage/pkg/logger"
)

// DatabaseComponents holds database connection and repositories.
type DatabaseComponents struct {
	DB              *sqlx.DB
	ModelStateRepo  *database.ModelStateRepository
	IssueMemoryRepo *database.IssueMemoryRepository
	TicketHistRepo  *database.TicketHistoryRepository
	DepartmentRepo  *database.DepartmentRepository
}

// SetupDatabase creates the database connection, applies the schema and
// builds the repositories.
func SetupDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	log.Info("Connecting to PostgreSQL database",
		logger.String("host", dbConfig.Host),
		logger.String("port", dbConfig.Port),
		logger.String("database", dbConfig.DBName),
	)

	db, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	deptRepo := database.NewDepartmentRepository(db)
	if err := deptRepo.EnsureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DatabaseComponents{
		DB:              db,
		ModelStateRepo:  database.NewModelStateRepository(db),
		IssueMemoryRepo: database.NewIssueMemoryRepository(db),
		TicketHistRepo:  database.NewTicketHistoryRepository(db),
		DepartmentRepo:  deptRepo,
	}, nil
}
