package memory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/memory"
	"github.com/janvedha/triage/pkg/logger"
)

type fakeStore struct {
	records    map[string]*domain.IssueMemoryRecord
	priorCount int
	priorErr   error
	alerts     []domain.SeasonalAlert
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*domain.IssueMemoryRecord)}
}

func key(wardID int, category string, month, year int) string {
	return fmt.Sprintf("%d|%s|%d|%d", wardID, category, month, year)
}

func (s *fakeStore) Find(_ context.Context, wardID int, category string, month, year int) (*domain.IssueMemoryRecord, error) {
	return s.records[key(wardID, category, month, year)], nil
}

func (s *fakeStore) Insert(_ context.Context, rec *domain.IssueMemoryRecord) error {
	s.records[key(rec.WardID, rec.IssueCategory, rec.Month, rec.Year)] = rec
	return nil
}

func (s *fakeStore) Update(_ context.Context, rec *domain.IssueMemoryRecord) error {
	s.records[key(rec.WardID, rec.IssueCategory, rec.Month, rec.Year)] = rec
	return nil
}

func (s *fakeStore) PriorYearOccurrences(_ context.Context, _ int, _ string, _, _ int) (int, error) {
	return s.priorCount, s.priorErr
}

func (s *fakeStore) SeasonalAlerts(_ context.Context, _, _, _ int) ([]domain.SeasonalAlert, error) {
	return s.alerts, nil
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return f.response, f.err
}

func newAgent(store memory.Store, client llm.Client) *memory.Agent {
	return memory.New(store, client, catalog.Default(), nil, nil, logger.NewNop())
}

func sighting(score float64, ticketRef string) memory.Input {
	return memory.Input{
		WardID:      12,
		Category:    "sewage_overflow",
		DeptID:      "D04",
		Label:       domain.LabelHigh,
		Score:       score,
		Description: "Sewage overflowing near the market street again",
		TicketRef:   ticketRef,
	}
}

func TestShouldCheck(t *testing.T) {
	agent := newAgent(newFakeStore(), nil)

	testCases := []struct {
		label    string
		category string
		want     bool
	}{
		{domain.LabelHigh, "anything", true},
		{domain.LabelCritical, "anything", true},
		{domain.LabelLow, "pothole", true}, // recurring category
		{domain.LabelLow, "street_light_out", false},
		{domain.LabelMedium, "certificate_request", false},
	}

	for _, tc := range testCases {
		if got := agent.ShouldCheck(tc.label, tc.category); got != tc.want {
			t.Errorf("ShouldCheck(%q, %q) = %v, want %v", tc.label, tc.category, got, tc.want)
		}
	}
}

func TestCheck_UpsertRollingAverage(t *testing.T) {
	store := newFakeStore()
	agent := newAgent(store, nil)
	ctx := context.Background()

	agent.Check(ctx, sighting(60, "T-1"))
	agent.Check(ctx, sighting(80, "T-2"))

	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	var rec *domain.IssueMemoryRecord
	for _, r := range store.records {
		rec = r
	}
	if rec.OccurrenceCount != 2 {
		t.Errorf("OccurrenceCount = %d, want 2", rec.OccurrenceCount)
	}
	if rec.AvgSeverityScore != 70 {
		t.Errorf("AvgSeverityScore = %v, want mean 70", rec.AvgSeverityScore)
	}
	if len(rec.SampleTicketIDs) != 2 || rec.SampleTicketIDs[1] != "T-2" {
		t.Errorf("SampleTicketIDs = %v", rec.SampleTicketIDs)
	}
}

func TestCheck_TicketRefsCapped(t *testing.T) {
	store := newFakeStore()
	agent := newAgent(store, nil)
	ctx := context.Background()

	refs := []string{"T-1", "T-2", "T-3", "T-4", "T-5", "T-6", "T-7"}
	for _, ref := range refs {
		agent.Check(ctx, sighting(50, ref))
	}

	var rec *domain.IssueMemoryRecord
	for _, r := range store.records {
		rec = r
	}
	if len(rec.SampleTicketIDs) != domain.MaxSampleTickets {
		t.Fatalf("SampleTicketIDs = %d entries, want %d", len(rec.SampleTicketIDs), domain.MaxSampleTickets)
	}
	if rec.SampleTicketIDs[0] != "T-3" || rec.SampleTicketIDs[4] != "T-7" {
		t.Errorf("cap must keep the most recent refs, got %v", rec.SampleTicketIDs)
	}
}

func TestCheck_ReReportedTicketNotDuplicated(t *testing.T) {
	store := newFakeStore()
	agent := newAgent(store, nil)
	ctx := context.Background()

	agent.Check(ctx, sighting(60, "T-1"))
	agent.Check(ctx, sighting(80, "T-1"))

	var rec *domain.IssueMemoryRecord
	for _, r := range store.records {
		rec = r
	}
	if len(rec.SampleTicketIDs) != 1 || rec.SampleTicketIDs[0] != "T-1" {
		t.Errorf("SampleTicketIDs = %v, want single T-1", rec.SampleTicketIDs)
	}
	// The sighting itself still counts.
	if rec.OccurrenceCount != 2 {
		t.Errorf("OccurrenceCount = %d, want 2", rec.OccurrenceCount)
	}
}

func TestCheck_AlertGating(t *testing.T) {
	testCases := []struct {
		name       string
		priorCount int
		wantAlert  bool
	}{
		{"no prior records", 0, false},
		{"single prior occurrence", 1, false},
		{"recurring pattern", 2, true},
		{"strongly recurring", 7, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.priorCount = tc.priorCount
			agent := newAgent(store, nil)

			alert := agent.Check(context.Background(), sighting(70, "T-1"))
			if got := alert != ""; got != tc.wantAlert {
				t.Errorf("alert = %q, want alert=%v", alert, tc.wantAlert)
			}
		})
	}
}

func TestCheck_LLMAlertWithTemplateFallback(t *testing.T) {
	store := newFakeStore()
	store.priorCount = 3

	got := newAgent(store, &fakeLLM{response: "Ward 12 floods every July; desilt drains in June."}).
		Check(context.Background(), sighting(70, "T-1"))
	if got != "Ward 12 floods every July; desilt drains in June." {
		t.Errorf("alert = %q, want model text", got)
	}

	got = newAgent(store, &fakeLLM{err: errors.New("down")}).
		Check(context.Background(), sighting(70, "T-1"))
	if !strings.Contains(got, "Seasonal Alert: Ward 12") {
		t.Errorf("template fallback = %q", got)
	}
}

func TestCheck_StoreFailureDegradesToNoAlert(t *testing.T) {
	store := newFakeStore()
	store.priorErr = errors.New("db down")
	agent := newAgent(store, nil)

	if alert := agent.Check(context.Background(), sighting(70, "T-1")); alert != "" {
		t.Errorf("alert = %q, want empty on store failure", alert)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := memory.ExtractKeywords("Sewage OVERFLOW overflow near the market street; sewage stench everywhere 123")

	want := []string{"sewage", "overflow", "market", "street", "stench", "everywhere"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keywords[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSeasonalAlerts_FiltersAndRecommends(t *testing.T) {
	store := newFakeStore()
	store.alerts = []domain.SeasonalAlert{
		{IssueCategory: "flooding", DeptID: "D14", OccurrenceCount: 5, LastSeenYear: 2025},
		{IssueCategory: "pothole", DeptID: "D01", OccurrenceCount: 1, LastSeenYear: 2024},
	}
	agent := newAgent(store, nil)

	alerts, err := agent.SeasonalAlerts(context.Background(), 12, 7)
	if err != nil {
		t.Fatalf("SeasonalAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 (single-occurrence entries filtered)", len(alerts))
	}
	if alerts[0].Recommendation == "" {
		t.Error("missing recommendation text")
	}
	if !strings.Contains(alerts[0].Recommendation, "Disaster Management") {
		t.Errorf("recommendation = %q, want department name", alerts[0].Recommendation)
	}
}
