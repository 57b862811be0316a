package domain_test

import (
	"testing"

	"github.com/janvedha/triage/internal/domain"
)

func TestScoreToLabel(t *testing.T) {
	testCases := []struct {
		score float64
		want  string
	}{
		{0, domain.LabelLow},
		{34.99, domain.LabelLow},
		{35, domain.LabelMedium},
		{59.99, domain.LabelMedium},
		{60, domain.LabelHigh},
		{79.99, domain.LabelHigh},
		{80, domain.LabelCritical},
		{100, domain.LabelCritical},
	}

	for _, tc := range testCases {
		if got := domain.ScoreToLabel(tc.score); got != tc.want {
			t.Errorf("ScoreToLabel(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
