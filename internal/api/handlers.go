// Package api exposes the triage engine over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janvedha/triage/internal/database"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/memory"
	"github.com/janvedha/triage/internal/pipeline"
	"github.com/janvedha/triage/internal/priority"
	"github.com/janvedha/triage/pkg/logger"
)

// AlertLister serves the read-only seasonal alerts query.
type AlertLister interface {
	SeasonalAlerts(ctx context.Context, wardID, month int) ([]domain.SeasonalAlert, error)
}

// ModelStateLister serves the retrain audit trail.
type ModelStateLister interface {
	History(ctx context.Context, limit int) ([]*domain.ModelState, error)
}

// Handler handles HTTP requests for the triage API
type Handler struct {
	pipeline *pipeline.Pipeline
	scorer   *priority.Scorer
	model    *priority.ModelService
	alerts   AlertLister
	states   ModelStateLister
	logger   logger.Logger
}

// NewHandler creates a new API handler. alerts may be nil when the memory
// subsystem is disabled; states may be nil when model persistence is off.
func NewHandler(
	p *pipeline.Pipeline,
	scorer *priority.Scorer,
	model *priority.ModelService,
	alerts AlertLister,
	states ModelStateLister,
	log logger.Logger,
) *Handler {
	return &Handler{
		pipeline: p,
		scorer:   scorer,
		model:    model,
		alerts:   alerts,
		states:   states,
		logger:   log,
	}
}

// RunPipeline handles POST /api/v1/pipeline
func (h *Handler) RunPipeline(c *gin.Context) {
	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), pipeline.RunInput{
		Description:  req.Description,
		LocationText: req.LocationText,
		PhotoRef:     req.PhotoRef,
		WardID:       req.WardID,
		TicketRef:    req.TicketRef,
	})
	if err != nil {
		h.logger.Error("pipeline run failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The only rejection this engine produces: low confidence or an explicit
	// clarification request from classification.
	if h.pipeline.Rejected(result.Classification) {
		c.JSON(http.StatusUnprocessableEntity, ClarificationResponse{
			Error:                 "needs_clarification",
			ClarificationQuestion: result.Classification.ClarificationQuestion,
			Classification:        result.Classification,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Classify handles POST /api/v1/classify
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classification, routing := h.pipeline.ClassifyAndRoute(c.Request.Context(), req.Description, req.PhotoRef)
	c.JSON(http.StatusOK, ClassifyResponse{
		Classification: classification,
		Routing:        routing,
	})
}

// ScorePriority handles POST /api/v1/priority/score
func (h *Handler) ScorePriority(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if req.Month == 0 {
		req.Month = int(now.Month())
		req.DayOfWeek = (int(now.Weekday()) + 6) % 7
		req.HourOfDay = now.Hour()
	}

	outcome := h.scorer.Score(priority.ScoreInput{
		Category:          req.Category,
		Description:       req.Description,
		DeptID:            req.DeptID,
		ReportCount:       req.ReportCount,
		LocationType:      req.LocationType,
		DaysOpen:          req.DaysOpen,
		SLAHoursRemaining: req.SLAHoursRemaining,
		SocialMentions:    req.SocialMentions,
		Month:             req.Month,
		DayOfWeek:         req.DayOfWeek,
		HourOfDay:         req.HourOfDay,
		WardID:            req.WardID,
	})
	c.JSON(http.StatusOK, outcome)
}

// TrainOnOutcome handles POST /api/v1/outcomes
func (h *Handler) TrainOnOutcome(c *gin.Context) {
	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.pipeline.TrainOnOutcome(c.Request.Context(), pipeline.OutcomeInput{
		Category:          req.Category,
		Description:       req.Description,
		DeptID:            req.DeptID,
		ReportCount:       req.ReportCount,
		DaysOpen:          req.DaysOpen,
		SocialMentions:    req.SocialMentions,
		SLAHoursRemaining: req.SLAHoursRemaining,
		Month:             req.Month,
		DayOfWeek:         req.DayOfWeek,
		HourOfDay:         req.HourOfDay,
		WardID:            req.WardID,
		ConfirmedLabel:    req.ConfirmedLabel,
	})

	resp := OutcomeResponse{Accepted: true}
	if h.model != nil {
		resp.SampleCount = h.model.SampleCount()
	}
	c.JSON(http.StatusAccepted, resp)
}

// GetSeasonalAlerts handles GET /api/v1/seasonal-alerts
func (h *Handler) GetSeasonalAlerts(c *gin.Context) {
	if h.alerts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "seasonal memory disabled"})
		return
	}

	wardID, err := strconv.Atoi(c.Query("ward"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ward must be an integer"})
		return
	}

	month := int(time.Now().Month())
	if raw := c.Query("month"); raw != "" {
		month, err = strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
			return
		}
	}

	alerts, err := h.alerts.SeasonalAlerts(c.Request.Context(), wardID, month)
	if err != nil {
		h.logger.Error("seasonal alerts query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SeasonalAlertsResponse{
		WardID: wardID,
		Month:  month,
		Alerts: alerts,
		Total:  len(alerts),
	})
}

// GetModelStates handles GET /api/v1/model/states
func (h *Handler) GetModelStates(c *gin.Context) {
	if h.states == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model persistence disabled"})
		return
	}

	limit := defaultModelStateLimit
	if raw := c.Query("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxModelStateLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-" + strconv.Itoa(maxModelStateLimit)})
			return
		}
	}

	states, err := h.states.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("model state history query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]ModelStateSummary, 0, len(states))
	for _, s := range states {
		summaries = append(summaries, ModelStateSummary{
			ID:           s.ID,
			SampleCount:  s.SampleCount,
			FeatureCount: len(s.FeatureNames),
			IsActive:     s.IsActive,
			TrainedAt:    s.TrainedAt,
		})
	}
	c.JSON(http.StatusOK, ModelStatesResponse{States: summaries, Total: len(summaries)})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready
func (h *Handler) ReadyCheck(c *gin.Context) {
	status := gin.H{"status": "ready"}
	if h.model != nil {
		status["model_samples"] = h.model.SampleCount()
	}
	c.JSON(http.StatusOK, status)
}

const (
	defaultModelStateLimit = 20
	maxModelStateLimit     = 100
)

var _ AlertLister = (*memory.Agent)(nil)
var _ ModelStateLister = (*database.ModelStateRepository)(nil)
