package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/janvedha/triage/internal/api"
	"github.com/janvedha/triage/internal/cache"
	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/classify"
	"github.com/janvedha/triage/internal/config"
	"github.com/janvedha/triage/internal/forecast"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/memory"
	"github.com/janvedha/triage/internal/pipeline"
	"github.com/janvedha/triage/internal/priority"
	"github.com/janvedha/triage/internal/route"
	"github.com/janvedha/triage/internal/severity"
	"github.com/janvedha/triage/internal/suggest"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// HTTPComponents holds all components needed for the HTTP server.
type HTTPComponents struct {
	DB        *sqlx.DB
	Pipeline  *pipeline.Pipeline
	Handler   *api.Handler
	Server    *api.Server
	Telemetry *telemetry.Provider
}

// NewHTTPComponents creates all components for the HTTP server.
func NewHTTPComponents(ctx context.Context, cfg *config.Config, log logger.Logger) (*HTTPComponents, error) {
	tp := telemetry.NewProvider()

	cat, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}

	dbComps, err := SetupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if err := dbComps.DepartmentRepo.Sync(ctx, cat.Departments); err != nil {
		log.Warn("department catalogue sync failed", logger.Error(err))
	}

	llmClient := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, log)

	classifier := classify.New(llmClient, cat, setupCache(ctx, cfg, log), cache.Key, tp, log)
	router := route.New(llmClient, cat, tp, log)

	features := priority.NewFeatureBuilder(cat)
	modelService := priority.NewModelService(dbComps.ModelStateRepo, features, tp, log)
	modelService.Load(ctx)
	scorer := priority.NewScorer(severity.NewEngine(cat), modelService, features, log)

	var forecaster memory.SpikeForecaster
	if cfg.Pipeline.ForecastEnabled {
		forecaster = forecast.New(dbComps.TicketHistRepo, tp, log)
	}
	memoryAgent := memory.New(dbComps.IssueMemoryRepo, llmClient, cat, forecaster, tp, log)
	suggester := suggest.New(llmClient, tp, log)

	p := pipeline.New(
		classifier, router, scorer, suggester,
		memoryAgent, modelService, dbComps.TicketHistRepo,
		dbComps.DepartmentRepo, cat, tp, log,
		pipeline.Options{MinConfidence: cfg.Pipeline.MinConfidence},
	)

	handler := api.NewHandler(p, scorer, modelService, memoryAgent, dbComps.ModelStateRepo, log)
	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, tp, log)

	return &HTTPComponents{
		DB:        dbComps.DB,
		Pipeline:  p,
		Handler:   handler,
		Server:    server,
		Telemetry: tp,
	}, nil
}

// loadCatalog loads the catalogue override file when configured, otherwise
// the compiled-in defaults.
func loadCatalog(cfg *config.Config, log logger.Logger) (*catalog.Catalog, error) {
	if cfg.Pipeline.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.Pipeline.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalogue loaded", logger.String("path", cfg.Pipeline.CatalogPath))
	return cat, nil
}

// setupCache connects the Redis classification cache. Failure is logged and
// the classifier runs uncached.
func setupCache(ctx context.Context, cfg *config.Config, log logger.Logger) classify.ResultCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Database)
	if err != nil {
		log.Warn("redis unavailable, classification cache disabled", logger.Error(err))
		return nil
	}
	return cache.New(rdb, cfg.Redis.ClassificationCacheTTL, log)
}
