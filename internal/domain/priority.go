package domain

import "time"

// Priority labels, coarse buckets derived from the continuous score.
const (
	LabelLow      = "LOW"
	LabelMedium   = "MEDIUM"
	LabelHigh     = "HIGH"
	LabelCritical = "CRITICAL"
)

// Priority sources identify the provenance of a score.
const (
	SourceRules  = "rules"
	SourceML     = "ml"
	SourceHybrid = "hybrid"
)

// Label thresholds. A score maps to the highest bucket whose threshold it
// meets; anything below MEDIUM is LOW.
const (
	CriticalThreshold = 80
	HighThreshold     = 60
	MediumThreshold   = 35
)

// ScoreToLabel maps a 0-100 priority score to its label.
func ScoreToLabel(score float64) string {
	switch {
	case score >= CriticalThreshold:
		return LabelCritical
	case score >= HighThreshold:
		return LabelHigh
	case score >= MediumThreshold:
		return LabelMedium
	default:
		return LabelLow
	}
}

// PriorityOutcome is the result of scoring one ticket.
type PriorityOutcome struct {
	Score  float64 `json:"score"`  // 0-100, rounded to 2 decimals
	Label  string  `json:"label"`  // LOW/MEDIUM/HIGH/CRITICAL
	Source string  `json:"source"` // rules/ml/hybrid
}

// ModelState is one persisted snapshot of the online priority model.
// Exactly one state is active at a time; retraining inserts a new state and
// deactivates the previous one so training provenance stays auditable.
type ModelState struct {
	ID           int64     `db:"id"`
	Params       []byte    `db:"params"` // serialized classifier parameters
	FeatureNames []string  `db:"-"`
	SampleCount  int       `db:"sample_count"`
	IsActive     bool      `db:"is_active"`
	TrainedAt    time.Time `db:"trained_at"`
}
