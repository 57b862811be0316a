// Package priority implements the hybrid priority scorer: the deterministic
// rule engine always runs, and a periodically retrained online model pulls
// the result only when it strongly disagrees.
package priority

import (
	"github.com/janvedha/triage/internal/catalog"
)

// Feature caps. Raw counts are clamped so a single viral ticket cannot
// dominate the model's gradient.
const (
	maxReportCount    = 20
	maxDaysOpen       = 60
	maxSocialMentions = 200
)

// Monsoon months (June through September), encoded as a binary feature.
const (
	monsoonStartMonth = 6
	monsoonEndMonth   = 9
)

// FeatureInput carries the raw ticket attributes the feature builder encodes.
type FeatureInput struct {
	Category          string
	Description       string
	DeptID            string
	ReportCount       int
	DaysOpen          int
	SocialMentions    int
	SLAHoursRemaining float64
	Month             int // 1-12
	DayOfWeek         int // 0=Monday .. 6=Sunday
	HourOfDay         int // 0-23
	WardID            int
}

// FeatureBuilder encodes tickets into the fixed-order numeric vector the
// online model trains on. The order is part of the model contract: a
// persisted model is only valid against the exact vector layout that
// trained it, which is why FeatureNames is stored alongside every state.
type FeatureBuilder struct {
	catalog *catalog.Catalog
	deptIDs []string
}

// NewFeatureBuilder creates a builder bound to the catalogue's department
// set. The one-hot block follows the catalogue's sorted id order.
func NewFeatureBuilder(cat *catalog.Catalog) *FeatureBuilder {
	return &FeatureBuilder{catalog: cat, deptIDs: cat.DepartmentIDs()}
}

// FeatureNames returns the vector layout, one name per position.
func (b *FeatureBuilder) FeatureNames() []string {
	names := []string{
		"severity_base",
		"report_count",
		"days_open",
		"social_mentions",
		"sla_hours_remaining",
		"safety_flag",
		"month",
		"day_of_week",
		"hour_of_day",
		"is_weekend",
		"is_monsoon",
		"ward_id",
	}
	for _, id := range b.deptIDs {
		names = append(names, "dept_"+id)
	}
	return names
}

// Vector encodes one ticket. Counts are capped, negative SLA slack is
// floored at zero (breach degree is the rule engine's concern, not the
// model's), and the department is one-hot encoded.
func (b *FeatureBuilder) Vector(in FeatureInput) []float64 {
	v := make([]float64, 0, 12+len(b.deptIDs))

	v = append(v,
		float64(b.catalog.BaseSeverity(in.Category)),
		float64(minInt(in.ReportCount, maxReportCount)),
		float64(minInt(in.DaysOpen, maxDaysOpen)),
		float64(minInt(in.SocialMentions, maxSocialMentions)),
		maxFloat(0, in.SLAHoursRemaining),
		boolFeature(b.catalog.ContainsSafetyKeyword(in.Description)),
		float64(in.Month),
		float64(in.DayOfWeek),
		float64(in.HourOfDay),
		boolFeature(in.DayOfWeek >= 5),
		boolFeature(in.Month >= monsoonStartMonth && in.Month <= monsoonEndMonth),
		float64(in.WardID),
	)

	for _, id := range b.deptIDs {
		v = append(v, boolFeature(id == in.DeptID))
	}
	return v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
