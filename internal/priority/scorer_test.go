package priority_test

import (
	"math"
	"testing"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/priority"
	"github.com/janvedha/triage/internal/severity"
	"github.com/janvedha/triage/pkg/logger"
)

type fixedPredictor struct {
	label string
	ok    bool
}

func (f fixedPredictor) Predict(_ []float64) (string, bool) {
	return f.label, f.ok
}

// potholeInput reproduces the rule score 74 scenario.
var potholeInput = priority.ScoreInput{
	Category:          "pothole",
	Description:       "Large pothole on Anna Salai causing accidents near school, multiple people reported",
	DeptID:            "D01",
	ReportCount:       5,
	LocationType:      "school_vicinity",
	DaysOpen:          2,
	SLAHoursRemaining: 20,
	SocialMentions:    60,
	Month:             8,
	DayOfWeek:         3,
	HourOfDay:         11,
	WardID:            7,
}

func newScorer(model priority.Predictor) *priority.Scorer {
	cat := catalog.Default()
	return priority.NewScorer(severity.NewEngine(cat), model, priority.NewFeatureBuilder(cat), logger.NewNop())
}

func TestScorer_NoModelUsesRules(t *testing.T) {
	outcome := newScorer(nil).Score(potholeInput)

	if outcome.Score != 74 {
		t.Errorf("Score = %v, want 74", outcome.Score)
	}
	if outcome.Label != domain.LabelHigh {
		t.Errorf("Label = %q, want HIGH", outcome.Label)
	}
	if outcome.Source != domain.SourceRules {
		t.Errorf("Source = %q, want rules", outcome.Source)
	}
}

func TestScorer_NoPredictionUsesRules(t *testing.T) {
	outcome := newScorer(fixedPredictor{ok: false}).Score(potholeInput)

	if outcome.Source != domain.SourceRules {
		t.Errorf("Source = %q, want rules when the model abstains", outcome.Source)
	}
	if outcome.Score != 74 {
		t.Errorf("Score = %v, want 74", outcome.Score)
	}
}

func TestScorer_AgreementKeepsRuleScore(t *testing.T) {
	// rule 74, HIGH midpoint 70: gap 4 <= 20, rule result stands but the
	// source records the agreement.
	outcome := newScorer(fixedPredictor{label: domain.LabelHigh, ok: true}).Score(potholeInput)

	if outcome.Score != 74 {
		t.Errorf("Score = %v, want rule score 74 exactly", outcome.Score)
	}
	if outcome.Label != domain.LabelHigh {
		t.Errorf("Label = %q, want HIGH", outcome.Label)
	}
	if outcome.Source != domain.SourceHybrid {
		t.Errorf("Source = %q, want hybrid", outcome.Source)
	}
}

func TestScorer_DisagreementBlends(t *testing.T) {
	// rule 74, LOW midpoint 20: gap 54 > 20, blend 0.6*74 + 0.4*20 = 52.4.
	outcome := newScorer(fixedPredictor{label: domain.LabelLow, ok: true}).Score(potholeInput)

	want := math.Round((0.6*74+0.4*20)*100) / 100
	if outcome.Score != want {
		t.Errorf("Score = %v, want blended %v", outcome.Score, want)
	}
	if outcome.Label != domain.LabelMedium {
		t.Errorf("Label = %q, want MEDIUM from blended score", outcome.Label)
	}
	if outcome.Source != domain.SourceHybrid {
		t.Errorf("Source = %q, want hybrid", outcome.Source)
	}
}

func TestScorer_UnknownModelLabelIgnored(t *testing.T) {
	outcome := newScorer(fixedPredictor{label: "URGENT", ok: true}).Score(potholeInput)

	if outcome.Source != domain.SourceRules {
		t.Errorf("Source = %q, want rules when prediction is unusable", outcome.Source)
	}
}

func TestScorer_UntrainedServiceSourceAlwaysRules(t *testing.T) {
	svc, _ := newService(&memoryStore{})
	scorer := newScorer(svc)

	inputs := []priority.ScoreInput{
		potholeInput,
		{Category: "garbage", Description: "trash", DeptID: "D05", Month: 2},
		{Category: "flood", Description: "street flooded, danger", DeptID: "D14", ReportCount: 12, Month: 7},
	}
	for _, in := range inputs {
		if outcome := scorer.Score(in); outcome.Source != domain.SourceRules {
			t.Errorf("Source = %q for %s, want rules while untrained", outcome.Source, in.Category)
		}
	}
}
