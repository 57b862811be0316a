// Package memory tracks whether an issue category recurs in the same ward
// during the same calendar month across years, and raises proactive alerts
// for departments ahead of predictable seasonal problems.
package memory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// Recurrence gates.
const (
	// minPriorOccurrences is the summed prior-year occurrence count at or
	// above which a seasonal alert is generated.
	minPriorOccurrences = 2

	maxKeywords       = 10
	minKeywordLength  = 5
	maxSnippetChars   = 200
	maxSeasonalAlerts = 10
)

const alertSystemPrompt = `You are a municipal planning advisor. Given a recurring civic issue pattern,
write ONE short proactive alert (2-3 sentences) for the responsible department:
state the pattern (ward, issue, month, how often it recurred) and recommend one concrete preventive action.
Respond with plain text only, no JSON, no markdown.`

// Store persists issue-memory records.
type Store interface {
	// Find returns the record for the exact key, or nil when none exists.
	Find(ctx context.Context, wardID int, category string, month, year int) (*domain.IssueMemoryRecord, error)
	Insert(ctx context.Context, rec *domain.IssueMemoryRecord) error
	Update(ctx context.Context, rec *domain.IssueMemoryRecord) error
	// PriorYearOccurrences sums occurrence counts across records for the
	// (ward, category, month) key in years strictly before beforeYear.
	PriorYearOccurrences(ctx context.Context, wardID int, category string, month, beforeYear int) (int, error)
	// SeasonalAlerts aggregates prior-year records for a (ward, month) key.
	SeasonalAlerts(ctx context.Context, wardID, month, beforeYear int) ([]domain.SeasonalAlert, error)
}

// SpikeForecaster is the optional volume forecaster consulted when the
// exact-match recurrence query finds nothing.
type SpikeForecaster interface {
	Forecast(ctx context.Context, wardID int, category string) (*domain.SpikeAlert, error)
}

// Input carries one sighting of an issue.
type Input struct {
	WardID      int
	Category    string
	DeptID      string
	Label       string
	Score       float64
	Description string
	TicketRef   string
}

// Agent is the recurrence/seasonal memory component.
type Agent struct {
	store      Store
	llm        llm.Client
	catalog    *catalog.Catalog
	forecaster SpikeForecaster
	telemetry  *telemetry.Provider
	logger     logger.Logger
	now        func() time.Time
}

// New creates a memory agent. forecaster may be nil.
func New(store Store, client llm.Client, cat *catalog.Catalog, forecaster SpikeForecaster, tp *telemetry.Provider, log logger.Logger) *Agent {
	return &Agent{
		store:      store,
		llm:        client,
		catalog:    cat,
		forecaster: forecaster,
		telemetry:  tp,
		logger:     log,
		now:        time.Now,
	}
}

// ShouldCheck gates memory work: only HIGH/CRITICAL tickets or categories
// known to recur are worth a lookup and a potential LLM call.
func (a *Agent) ShouldCheck(label, category string) bool {
	if label == domain.LabelHigh || label == domain.LabelCritical {
		return true
	}
	return a.catalog.IsRecurring(category)
}

// Check records the sighting and returns a seasonal alert string when the
// (ward, category, month) pattern recurred in prior years, or a spike
// forecast alert when it did not but the forecaster predicts one. Returns
// "" for no alert. Failures are logged and degrade to no alert.
func (a *Agent) Check(ctx context.Context, in Input) string {
	now := a.now()
	month, year := int(now.Month()), now.Year()

	// Upsert first so the record exists even if alert generation fails.
	if err := a.upsert(ctx, in, month, year, now); err != nil {
		a.logger.Warn("issue memory upsert failed",
			logger.Int("ward_id", in.WardID),
			logger.String("category", in.Category),
			logger.Error(err))
	}

	prior, err := a.store.PriorYearOccurrences(ctx, in.WardID, in.Category, month, year)
	if err != nil {
		a.logger.Warn("prior-year recurrence query failed", logger.Error(err))
		return ""
	}

	if prior >= minPriorOccurrences {
		if a.telemetry != nil {
			a.telemetry.Metrics.SeasonalAlerts.WithLabelValues(in.Category).Inc()
		}
		return a.generateAlert(ctx, in, month, prior)
	}

	if a.forecaster == nil {
		return ""
	}
	spike, err := a.forecaster.Forecast(ctx, in.WardID, in.Category)
	if err != nil {
		a.logger.Warn("spike forecast failed", logger.Error(err))
		return ""
	}
	if spike == nil {
		return ""
	}
	return spike.Message
}

// upsert merges the sighting into the current year's record, or creates it.
func (a *Agent) upsert(ctx context.Context, in Input, month, year int, now time.Time) error {
	rec, err := a.store.Find(ctx, in.WardID, in.Category, month, year)
	if err != nil {
		return err
	}

	snippet := truncate(in.Description, maxSnippetChars)

	if rec == nil {
		return a.store.Insert(ctx, &domain.IssueMemoryRecord{
			WardID:              in.WardID,
			IssueCategory:       in.Category,
			DeptID:              in.DeptID,
			Month:               month,
			Year:                year,
			OccurrenceCount:     1,
			AvgSeverityScore:    round2(in.Score),
			Keywords:            ExtractKeywords(in.Description),
			SampleTicketIDs:     appendTicketRef(nil, in.TicketRef),
			LastSeenDescription: snippet,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	n := rec.OccurrenceCount + 1
	rec.OccurrenceCount = n
	rec.AvgSeverityScore = round2((rec.AvgSeverityScore*float64(n-1) + in.Score) / float64(n))
	rec.SampleTicketIDs = appendTicketRef(rec.SampleTicketIDs, in.TicketRef)
	rec.LastSeenDescription = snippet
	rec.UpdatedAt = now
	return a.store.Update(ctx, rec)
}

// generateAlert asks the model for a tailored alert and falls back to the
// fixed template on any failure.
func (a *Agent) generateAlert(ctx context.Context, in Input, month, priorCount int) string {
	monthName := time.Month(month).String()
	template := fmt.Sprintf(
		"Seasonal Alert: Ward %d has historically reported %s issues in %s (%d occurrences in prior years). Recommend preventive inspection by %s before the pattern repeats.",
		in.WardID, in.Category, monthName, priorCount, a.catalog.Department(in.DeptID).Name)

	if a.llm == nil {
		return template
	}

	userContent := fmt.Sprintf(
		"Ward: %d\nIssue category: %s\nDepartment: %s\nMonth: %s\nPrior-year occurrences this month: %d\nLatest complaint: %s",
		in.WardID, in.Category, a.catalog.Department(in.DeptID).Name, monthName, priorCount,
		truncate(in.Description, maxSnippetChars))

	raw, err := a.llm.Complete(ctx, []llm.Message{
		llm.System(alertSystemPrompt),
		llm.User(userContent),
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			a.logger.Warn("llm alert generation failed, using template", logger.Error(err))
			if a.telemetry != nil {
				a.telemetry.Metrics.LLMFallbacks.WithLabelValues("memory").Inc()
			}
		}
		return template
	}
	return strings.TrimSpace(raw)
}

// SeasonalAlerts returns recommendation entries for every issue category
// with a prior-year recurrence in the ward for the month.
func (a *Agent) SeasonalAlerts(ctx context.Context, wardID, month int) ([]domain.SeasonalAlert, error) {
	alerts, err := a.store.SeasonalAlerts(ctx, wardID, month, a.now().Year())
	if err != nil {
		return nil, fmt.Errorf("seasonal alerts for ward %d month %d: %w", wardID, month, err)
	}

	monthName := time.Month(month).String()
	out := make([]domain.SeasonalAlert, 0, len(alerts))
	for _, alert := range alerts {
		if alert.OccurrenceCount < minPriorOccurrences {
			continue
		}
		alert.Recommendation = fmt.Sprintf(
			"%s recurred %d times in ward %d during %s of previous years; schedule preventive action with %s.",
			alert.IssueCategory, alert.OccurrenceCount, wardID, monthName,
			a.catalog.Department(alert.DeptID).Name)
		out = append(out, alert)
		if len(out) == maxSeasonalAlerts {
			break
		}
	}
	return out, nil
}

// ExtractKeywords pulls up to 10 distinct case-folded alphabetic tokens
// longer than 4 characters from the description.
func ExtractKeywords(description string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	tokens := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		if len([]rune(tok)) < minKeywordLength {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// appendTicketRef appends the ref keeping only the most recent distinct
// entries; a re-reported ticket does not consume another slot.
func appendTicketRef(refs []string, ref string) []string {
	if ref == "" {
		return refs
	}
	for _, existing := range refs {
		if existing == ref {
			return refs
		}
	}
	refs = append(refs, ref)
	if len(refs) > domain.MaxSampleTickets {
		refs = refs[len(refs)-domain.MaxSampleTickets:]
	}
	return refs
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
