// Package suggest generates short resolution suggestions for field staff.
// The language-model path produces ticket-specific advice; a category-keyed
// table serves canned suggestions when the backend is down.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

const suggestionCount = 3

const systemPrompt = `You are a municipal operations advisor. Given a classified civic complaint,
produce exactly 3 short, actionable resolution suggestions for the assigned department's field team.
Each suggestion is one sentence, imperative, specific to this complaint.

Respond ONLY with a JSON array of 3 strings, e.g.
["First action.", "Second action.", "Third action."]`

// cannedSuggestions serves the common categories when the backend is down.
var cannedSuggestions = map[string][]string{
	"pothole": {
		"Dispatch road crew with cold-mix asphalt for temporary patching.",
		"Place hazard barricades and reflective markers around the pothole.",
		"Schedule permanent hot-mix resurfacing within the SLA window.",
	},
	"sewage_overflow": {
		"Send jetting machine to clear the blocked sewer line.",
		"Disinfect the overflow area with bleaching powder.",
		"Inspect upstream manholes for contributing blockages.",
	},
	"street_light_out": {
		"Send electrician to check the fixture, fuse and cabling.",
		"Replace the lamp or ballast if faulty.",
		"Verify the feeder pillar timer settings for the stretch.",
	},
	"garbage": {
		"Dispatch collection vehicle to clear the accumulated waste.",
		"Disinfect the spot after clearance.",
		"Review the collection schedule for this location.",
	},
	"water": {
		"Send valve operator to isolate the affected main.",
		"Arrange tanker supply for affected households.",
		"Schedule pipeline repair crew with leak-detection equipment.",
	},
}

// Suggester produces resolution suggestions for a classified complaint.
type Suggester struct {
	llm       llm.Client
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// New creates a suggester.
func New(client llm.Client, tp *telemetry.Provider, log logger.Logger) *Suggester {
	return &Suggester{llm: client, telemetry: tp, logger: log}
}

// Suggest returns exactly 3 suggestions. It never returns an error; any
// backend failure falls back to the canned table, keyed by category with a
// priority-aware generic set as the last resort.
func (s *Suggester) Suggest(ctx context.Context, classification domain.ClassificationResult, priority domain.PriorityOutcome) []string {
	suggestions, err := s.suggestLLM(ctx, classification, priority)
	if err != nil {
		s.logger.Warn("llm suggestion generation failed, using canned suggestions",
			logger.String("category", classification.IssueCategory),
			logger.Error(err))
		if s.telemetry != nil {
			s.telemetry.Metrics.LLMFallbacks.WithLabelValues("suggest").Inc()
		}
		return fallback(classification.IssueCategory, priority.Label)
	}
	return suggestions
}

func (s *Suggester) suggestLLM(ctx context.Context, classification domain.ClassificationResult, priority domain.PriorityOutcome) ([]string, error) {
	userContent := fmt.Sprintf(
		"Department: %s\nCategory: %s\nPriority: %s (%.2f)\nComplaint summary: %s",
		classification.DeptName, classification.IssueCategory,
		priority.Label, priority.Score, classification.IssueSummary)

	raw, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(systemPrompt),
		llm.User(userContent),
	})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if err := llm.DecodeJSON(raw, &suggestions); err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, suggestionCount)
	for _, sg := range suggestions {
		if sg = strings.TrimSpace(sg); sg != "" {
			cleaned = append(cleaned, sg)
		}
		if len(cleaned) == suggestionCount {
			break
		}
	}
	if len(cleaned) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return cleaned, nil
}

// fallback picks the canned set whose key the category contains, or a
// generic priority-aware triple.
func fallback(category, label string) []string {
	lower := strings.ToLower(category)
	for key, set := range cannedSuggestions {
		if strings.Contains(lower, key) {
			return set
		}
	}

	first := "Assign a field inspector to verify the complaint on site."
	if label == domain.LabelHigh || label == domain.LabelCritical {
		first = "Dispatch a field team immediately to assess and contain the issue."
	}
	return []string{
		first,
		"Update the citizen with an expected resolution timeline.",
		"Log findings and close the ticket with photographic evidence.",
	}
}
