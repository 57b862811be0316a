package priority_test

import (
	"testing"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/priority"
)

func TestFeatureBuilder_VectorLayout(t *testing.T) {
	b := priority.NewFeatureBuilder(catalog.Default())

	names := b.FeatureNames()
	if len(names) != 26 {
		t.Fatalf("len(names) = %d, want 26", len(names))
	}

	v := b.Vector(priority.FeatureInput{
		Category:          "pothole",
		Description:       "pothole causing accident risk",
		DeptID:            "D01",
		ReportCount:       5,
		DaysOpen:          2,
		SocialMentions:    60,
		SLAHoursRemaining: 20,
		Month:             7,
		DayOfWeek:         2,
		HourOfDay:         14,
		WardID:            12,
	})
	if len(v) != len(names) {
		t.Fatalf("len(vector) = %d, want %d", len(v), len(names))
	}

	checks := map[string]float64{
		"severity_base":       25,
		"report_count":        5,
		"days_open":           2,
		"social_mentions":     60,
		"sla_hours_remaining": 20,
		"safety_flag":         1, // "accident"
		"month":               7,
		"day_of_week":         2,
		"hour_of_day":         14,
		"is_weekend":          0,
		"is_monsoon":          1, // July
		"ward_id":             12,
		"dept_D01":            1,
		"dept_D02":            0,
		"dept_D14":            0,
	}
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	for name, want := range checks {
		i, ok := idx[name]
		if !ok {
			t.Fatalf("feature %q missing from layout", name)
		}
		if v[i] != want {
			t.Errorf("%s = %v, want %v", name, v[i], want)
		}
	}
}

func TestFeatureBuilder_Caps(t *testing.T) {
	b := priority.NewFeatureBuilder(catalog.Default())

	v := b.Vector(priority.FeatureInput{
		Category:          "garbage",
		ReportCount:       500,
		DaysOpen:          365,
		SocialMentions:    10000,
		SLAHoursRemaining: -48,
		Month:             1,
		DayOfWeek:         6,
	})

	// positions: 1 reports, 2 days, 3 social, 4 sla, 9 weekend, 10 monsoon
	if v[1] != 20 {
		t.Errorf("report_count = %v, want capped 20", v[1])
	}
	if v[2] != 60 {
		t.Errorf("days_open = %v, want capped 60", v[2])
	}
	if v[3] != 200 {
		t.Errorf("social_mentions = %v, want capped 200", v[3])
	}
	if v[4] != 0 {
		t.Errorf("sla_hours_remaining = %v, want floored 0", v[4])
	}
	if v[9] != 1 {
		t.Errorf("is_weekend = %v for Sunday, want 1", v[9])
	}
	if v[10] != 0 {
		t.Errorf("is_monsoon = %v for January, want 0", v[10])
	}
}
