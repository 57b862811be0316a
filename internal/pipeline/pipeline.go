// Package pipeline orchestrates one complaint's pass through the triage
// engine: classify, route, score, then suggestion generation and seasonal
// memory concurrently. Each step owns its own fallback; the pipeline itself
// never retries across steps.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/memory"
	"github.com/janvedha/triage/internal/priority"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// DefaultMinConfidence is the classification confidence below which the
// complaint is rejected with a clarification request.
const DefaultMinConfidence = 0.6

// Classifier classifies complaint text.
type Classifier interface {
	Classify(ctx context.Context, description, photoRef string) domain.ClassificationResult
}

// Router confirms or corrects the classified department.
type Router interface {
	Route(ctx context.Context, description string, classification domain.ClassificationResult) domain.RoutingResult
}

// Scorer computes the hybrid priority outcome.
type Scorer interface {
	Score(in priority.ScoreInput) domain.PriorityOutcome
}

// Suggester generates resolution suggestions.
type Suggester interface {
	Suggest(ctx context.Context, classification domain.ClassificationResult, outcome domain.PriorityOutcome) []string
}

// MemoryAgent is the recurrence/seasonal memory component.
type MemoryAgent interface {
	ShouldCheck(label, category string) bool
	Check(ctx context.Context, in memory.Input) string
}

// Trainer accepts confirmed outcomes for the online model.
type Trainer interface {
	TrainOnOutcome(ctx context.Context, in priority.FeatureInput, confirmedLabel string)
}

// HistoryRecorder stores ticket sightings for the spike forecaster.
type HistoryRecorder interface {
	Record(ctx context.Context, rec domain.TicketRecord) error
}

// SLASource resolves a department's SLA from the synced departments table.
type SLASource interface {
	SLADays(ctx context.Context, deptID string) (int, error)
}

// RunInput is one complaint entering the pipeline. WardID is nil when the
// complaint carries no ward; the memory branch is then skipped entirely.
type RunInput struct {
	Description  string
	LocationText string
	PhotoRef     string
	WardID       *int
	TicketRef    string
}

// OutcomeInput is one confirmed outcome reported at ticket closure.
type OutcomeInput struct {
	Category          string
	Description       string
	DeptID            string
	ReportCount       int
	DaysOpen          int
	SocialMentions    int
	SLAHoursRemaining float64
	Month             int
	DayOfWeek         int
	HourOfDay         int
	WardID            int
	ConfirmedLabel    string
}

// Pipeline wires the triage components into the single-pass state machine.
type Pipeline struct {
	classifier Classifier
	router     Router
	scorer     Scorer
	suggester  Suggester
	memory     MemoryAgent
	trainer    Trainer
	history    HistoryRecorder
	sla        SLASource
	catalog    *catalog.Catalog
	telemetry  *telemetry.Provider
	logger     logger.Logger

	minConfidence float64
	now           func() time.Time
}

// Options carries the pipeline's policy knobs.
type Options struct {
	// MinConfidence rejects classifications below this confidence.
	MinConfidence float64
}

// New creates a pipeline. memory, trainer, history and sla may be nil.
func New(
	classifier Classifier,
	router Router,
	scorer Scorer,
	suggester Suggester,
	memory MemoryAgent,
	trainer Trainer,
	history HistoryRecorder,
	sla SLASource,
	cat *catalog.Catalog,
	tp *telemetry.Provider,
	log logger.Logger,
	opts Options,
) *Pipeline {
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	return &Pipeline{
		classifier:    classifier,
		router:        router,
		scorer:        scorer,
		suggester:     suggester,
		memory:        memory,
		trainer:       trainer,
		history:       history,
		sla:           sla,
		catalog:       cat,
		telemetry:     tp,
		logger:        log,
		minConfidence: opts.MinConfidence,
		now:           time.Now,
	}
}

// ClassifyAndRoute runs only the first two pipeline steps.
func (p *Pipeline) ClassifyAndRoute(ctx context.Context, description, photoRef string) (domain.ClassificationResult, domain.RoutingResult) {
	classification := p.classifier.Classify(ctx, description, photoRef)
	routing := p.router.Route(ctx, description, classification)
	return classification, routing
}

// Rejected reports whether the classification must be bounced back to the
// citizen with a clarification request. This is pipeline policy, not any
// single component's.
func (p *Pipeline) Rejected(c domain.ClassificationResult) bool {
	return c.NeedsClarification || c.Confidence < p.minConfidence
}

// Run processes one complaint end to end.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (*domain.PipelineResult, error) {
	start := p.now()
	runID := uuid.New().String()
	log := p.logger.With(logger.String("run_id", runID))

	classification := step(p, "classify", func() domain.ClassificationResult {
		return p.classifier.Classify(ctx, in.Description, in.PhotoRef)
	})
	if p.telemetry != nil {
		p.telemetry.RecordClassification(classification.DeptID)
	}

	if p.Rejected(classification) {
		log.Info("complaint rejected for clarification",
			logger.Float64("confidence", classification.Confidence),
			logger.Bool("needs_clarification", classification.NeedsClarification))
		if p.telemetry != nil {
			p.telemetry.RecordPipeline("rejected", time.Since(start))
		}
		return &domain.PipelineResult{
			RunID:          runID,
			Classification: classification,
			ProcessingMs:   time.Since(start).Milliseconds(),
		}, nil
	}

	routing := step(p, "route", func() domain.RoutingResult {
		return p.router.Route(ctx, in.Description, classification)
	})

	now := start
	outcome := step(p, "score", func() domain.PriorityOutcome {
		return p.scorer.Score(priority.ScoreInput{
			Category:          classification.IssueCategory,
			Description:       in.Description,
			DeptID:            routing.DeptID,
			ReportCount:       1,
			LocationType:      p.catalog.LocationType(in.LocationText),
			DaysOpen:          0,
			SLAHoursRemaining: p.slaHours(ctx, routing.DeptID),
			SocialMentions:    0,
			Month:             int(now.Month()),
			DayOfWeek:         mondayIndexed(now.Weekday()),
			HourOfDay:         now.Hour(),
			WardID:            wardOrZero(in.WardID),
		})
	})
	if p.telemetry != nil {
		p.telemetry.RecordPriority(outcome.Label, outcome.Source)
	}

	result := &domain.PipelineResult{
		RunID:          runID,
		Classification: classification,
		Routing:        routing,
		Priority:       outcome,
	}

	// Suggestion generation and memory recall are independent; run both and
	// join before returning. Branch failures degrade inside the branches.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Suggestions = p.suggester.Suggest(gctx, classification, outcome)
		return nil
	})
	if in.WardID != nil && p.memory != nil {
		wardID := *in.WardID
		g.Go(func() error {
			p.recordHistory(gctx, in.TicketRef, wardID, classification.IssueCategory, log)
			if !p.memory.ShouldCheck(outcome.Label, classification.IssueCategory) {
				return nil
			}
			result.SeasonalAlert = p.memory.Check(gctx, memory.Input{
				WardID:      wardID,
				Category:    classification.IssueCategory,
				DeptID:      routing.DeptID,
				Label:       outcome.Label,
				Score:       outcome.Score,
				Description: in.Description,
				TicketRef:   in.TicketRef,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.ProcessingMs = time.Since(start).Milliseconds()
	if p.telemetry != nil {
		p.telemetry.RecordPipeline("completed", time.Since(start))
	}
	log.Info("pipeline run completed",
		logger.String("dept_id", routing.DeptID),
		logger.String("priority", outcome.Label),
		logger.String("source", outcome.Source),
		logger.Int64("processing_ms", result.ProcessingMs))
	return result, nil
}

// TrainOnOutcome feeds one confirmed outcome to the online model.
func (p *Pipeline) TrainOnOutcome(ctx context.Context, in OutcomeInput) {
	if p.trainer == nil {
		return
	}
	p.trainer.TrainOnOutcome(ctx, priority.FeatureInput{
		Category:          in.Category,
		Description:       in.Description,
		DeptID:            in.DeptID,
		ReportCount:       in.ReportCount,
		DaysOpen:          in.DaysOpen,
		SocialMentions:    in.SocialMentions,
		SLAHoursRemaining: in.SLAHoursRemaining,
		Month:             in.Month,
		DayOfWeek:         in.DayOfWeek,
		HourOfDay:         in.HourOfDay,
		WardID:            in.WardID,
	}, in.ConfirmedLabel)
}

// slaHours resolves the routed department's SLA window, preferring the
// synced departments table and falling back to the catalogue.
func (p *Pipeline) slaHours(ctx context.Context, deptID string) float64 {
	if p.sla != nil {
		days, err := p.sla.SLADays(ctx, deptID)
		if err == nil && days > 0 {
			return float64(days) * 24
		}
		if err != nil {
			p.logger.Warn("department sla lookup failed, using catalogue",
				logger.String("dept_id", deptID), logger.Error(err))
		}
	}
	return p.catalog.SLAHours(deptID)
}

func (p *Pipeline) recordHistory(ctx context.Context, ticketRef string, wardID int, category string, log logger.Logger) {
	if p.history == nil || ticketRef == "" {
		return
	}
	err := p.history.Record(ctx, domain.TicketRecord{
		TicketID:      ticketRef,
		WardID:        wardID,
		IssueCategory: category,
		CreatedAt:     p.now(),
	})
	if err != nil {
		log.Warn("ticket history recording failed", logger.Error(err))
	}
}

// step runs fn and records its latency under the step name.
func step[T any](p *Pipeline, name string, fn func() T) T {
	start := time.Now()
	out := fn()
	if p.telemetry != nil {
		p.telemetry.RecordStep(name, time.Since(start))
	}
	return out
}

func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func wardOrZero(ward *int) int {
	if ward == nil {
		return 0
	}
	return *ward
}
