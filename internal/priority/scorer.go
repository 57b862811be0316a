package priority

import (
	"math"

	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/severity"
	"github.com/janvedha/triage/pkg/logger"
)

// Blending policy. The rule engine is the interpretable default; the model
// only pulls the result when the two disagree by more than the agreement
// gap, and its influence is bounded at the blend weight.
const (
	agreementGap = 20
	ruleWeight   = 0.6
	modelWeight  = 0.4
)

// labelMidpoints maps a model label to its approximate score for blending.
var labelMidpoints = map[string]float64{
	domain.LabelLow:      20,
	domain.LabelMedium:   50,
	domain.LabelHigh:     70,
	domain.LabelCritical: 90,
}

// ScoreInput carries everything the hybrid scorer needs for one ticket.
type ScoreInput struct {
	Category          string
	Description       string
	DeptID            string
	ReportCount       int
	LocationType      string
	DaysOpen          int
	SLAHoursRemaining float64
	SocialMentions    int
	Month             int
	DayOfWeek         int
	HourOfDay         int
	WardID            int
}

// Predictor is the model capability the scorer consults.
type Predictor interface {
	Predict(features []float64) (string, bool)
}

// Scorer combines the rule engine and the online model.
type Scorer struct {
	rules    *severity.Engine
	model    Predictor
	features *FeatureBuilder
	logger   logger.Logger
}

// NewScorer creates a hybrid scorer. model may be nil for rule-only scoring.
func NewScorer(rules *severity.Engine, model Predictor, features *FeatureBuilder, log logger.Logger) *Scorer {
	return &Scorer{rules: rules, model: model, features: features, logger: log}
}

// Score computes the final priority outcome.
//
// The rule score is always computed. When the model offers a prediction its
// label is converted to a midpoint score; a gap of at most agreementGap
// keeps the rule score untouched with source "hybrid" (agreement recorded,
// not blended), while a larger gap blends 60/40 and relabels from the
// blended score.
func (s *Scorer) Score(in ScoreInput) domain.PriorityOutcome {
	ruleScore, ruleLabel := s.rules.Score(severity.Input{
		Category:         in.Category,
		ReportCount:      in.ReportCount,
		LocationType:     in.LocationType,
		DaysOpen:         in.DaysOpen,
		HoursToSLABreach: in.SLAHoursRemaining,
		SocialMentions:   in.SocialMentions,
		Description:      in.Description,
	})

	if s.model == nil {
		return domain.PriorityOutcome{Score: ruleScore, Label: ruleLabel, Source: domain.SourceRules}
	}

	features := s.features.Vector(FeatureInput{
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
	})

	mlLabel, ok := s.model.Predict(features)
	if !ok {
		return domain.PriorityOutcome{Score: ruleScore, Label: ruleLabel, Source: domain.SourceRules}
	}
	mlScore, ok := labelMidpoints[mlLabel]
	if !ok {
		s.logger.Warn("model returned unknown label, ignoring prediction", logger.String("label", mlLabel))
		return domain.PriorityOutcome{Score: ruleScore, Label: ruleLabel, Source: domain.SourceRules}
	}

	if math.Abs(ruleScore-mlScore) <= agreementGap {
		return domain.PriorityOutcome{Score: ruleScore, Label: ruleLabel, Source: domain.SourceHybrid}
	}

	blended := round2(ruleWeight*ruleScore + modelWeight*mlScore)
	return domain.PriorityOutcome{
		Score:  blended,
		Label:  domain.ScoreToLabel(blended),
		Source: domain.SourceHybrid,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
