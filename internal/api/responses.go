package api

import (
	"time"

	"github.com/janvedha/triage/internal/domain"
)

// PipelineRequest represents a complaint entering the triage pipeline.
type PipelineRequest struct {
	Description  string `json:"description" binding:"required"`
	LocationText string `json:"location_text"`
	PhotoRef     string `json:"photo_ref"`
	WardID       *int   `json:"ward_id"`
	TicketRef    string `json:"ticket_ref"`
}

// ClarificationResponse is returned when a complaint is rejected pending
// clarification from the citizen.
type ClarificationResponse struct {
	Error                 string                      `json:"error"`
	ClarificationQuestion string                      `json:"clarification_question,omitempty"`
	Classification        domain.ClassificationResult `json:"classification"`
}

// ClassifyRequest represents a classify-and-route request.
type ClassifyRequest struct {
	Description string `json:"description" binding:"required"`
	PhotoRef    string `json:"photo_ref"`
}

// ClassifyResponse carries the first two pipeline steps' results.
type ClassifyResponse struct {
	Classification domain.ClassificationResult `json:"classification"`
	Routing        domain.RoutingResult        `json:"routing"`
}

// ScoreRequest represents a standalone priority scoring request.
type ScoreRequest struct {
	Category          string  `json:"category" binding:"required"`
	Description       string  `json:"description"`
	DeptID            string  `json:"dept_id"`
	ReportCount       int     `json:"report_count"`
	LocationType      string  `json:"location_type"`
	DaysOpen          int     `json:"days_open"`
	SLAHoursRemaining float64 `json:"sla_hours_remaining"`
	SocialMentions    int     `json:"social_mentions"`
	Month             int     `json:"month"`
	DayOfWeek         int     `json:"day_of_week"`
	HourOfDay         int     `json:"hour_of_day"`
	WardID            int     `json:"ward_id"`
}

// OutcomeRequest represents a confirmed outcome reported at ticket closure.
type OutcomeRequest struct {
	Category          string  `json:"category" binding:"required"`
	Description       string  `json:"description"`
	DeptID            string  `json:"dept_id"`
	ReportCount       int     `json:"report_count"`
	DaysOpen          int     `json:"days_open"`
	SocialMentions    int     `json:"social_mentions"`
	SLAHoursRemaining float64 `json:"sla_hours_remaining"`
	Month             int     `json:"month"`
	DayOfWeek         int     `json:"day_of_week"`
	HourOfDay         int     `json:"hour_of_day"`
	WardID            int     `json:"ward_id"`
	ConfirmedLabel    string  `json:"confirmed_label" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}

// OutcomeResponse acknowledges a training sample.
type OutcomeResponse struct {
	Accepted    bool `json:"accepted"`
	SampleCount int  `json:"sample_count"`
}

// ModelStateSummary is one retrain audit entry. The serialized parameters
// stay out of the API surface.
type ModelStateSummary struct {
	ID           int64     `json:"id"`
	SampleCount  int       `json:"sample_count"`
	FeatureCount int       `json:"feature_count"`
	IsActive     bool      `json:"is_active"`
	TrainedAt    time.Time `json:"trained_at"`
}

// ModelStatesResponse lists retrain audit entries, newest first.
type ModelStatesResponse struct {
	States []ModelStateSummary `json:"states"`
	Total  int                 `json:"total"`
}

// SeasonalAlertsResponse lists recommendation entries for a ward and month.
type SeasonalAlertsResponse struct {
	WardID int                    `json:"ward_id"`
	Month  int                    `json:"month"`
	Alerts []domain.SeasonalAlert `json:"alerts"`
	Total  int                    `json:"total"`
}
