// Package forecast predicts near-term complaint volume per (ward, category)
// pair from historical daily counts, using weekday-seasonal means. It is
// strictly data-gated: pairs with thin history produce no result, not an
// error.
package forecast

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// Data gates and thresholds.
const (
	minObservations = 90 // daily observations required before a pair is modeled
	horizonDays     = 30
	retrainAfter    = 7 * 24 * time.Hour
	spikeFactor     = 1.5

	historyWindow    = 365 * 24 * time.Hour
	recentWindowDays = 30 // window whose level anchors the forecast
)

// HistoryStore provides the ticket history a pair's model trains on.
type HistoryStore interface {
	TicketsSince(ctx context.Context, wardID int, category string, since time.Time) ([]domain.TicketRecord, error)
}

// pairModel is an immutable trained model for one (ward, category) pair.
// Daily volume is modeled as a weekday-seasonal profile anchored to the
// recent-window level, so a surge in the last weeks lifts the forecast even
// when the long-run weekday shape is flat.
type pairModel struct {
	weekdayMeans [7]float64 // indexed by time.Weekday
	dailyMean    float64
	recentMean   float64
	observations int
	trainedAt    time.Time
}

// forecastSum predicts total volume over the horizon starting the day after
// from. Each day is the weekday's seasonal index times the recent level.
func (m *pairModel) forecastSum(from time.Time, days int) float64 {
	var sum float64
	for i := 1; i <= days; i++ {
		index := 1.0
		if m.dailyMean > 0 {
			index = m.weekdayMeans[from.AddDate(0, 0, i).Weekday()] / m.dailyMean
		}
		sum += index * m.recentMean
	}
	return sum
}

// Forecaster caches one model per (ward, category) pair and retrains a pair
// when its model is absent or stale. A pair's cache entry is replaced
// atomically under the lock; the old model stays servable to readers that
// already hold it.
type Forecaster struct {
	store     HistoryStore
	telemetry *telemetry.Provider
	logger    logger.Logger
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]*pairModel
}

// New creates a forecaster.
func New(store HistoryStore, tp *telemetry.Provider, log logger.Logger) *Forecaster {
	return &Forecaster{
		store:     store,
		telemetry: tp,
		logger:    log,
		now:       time.Now,
		cache:     make(map[string]*pairModel),
	}
}

func pairKey(wardID int, category string) string {
	return fmt.Sprintf("%d:%s", wardID, category)
}

// Forecast predicts the next 30 days of volume for the pair and raises a
// SpikeAlert when the forecast exceeds 1.5x the historical per-horizon
// average. Returns (nil, nil) when the pair's history is below the minimum
// observation gate.
func (f *Forecaster) Forecast(ctx context.Context, wardID int, category string) (*domain.SpikeAlert, error) {
	model, err := f.pairModelFor(ctx, wardID, category)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	now := f.now()
	predicted := model.forecastSum(now, horizonDays)
	historical := model.dailyMean * horizonDays
	if historical <= 0 {
		return nil, nil
	}

	// Strictly above the factor; a forecast at exactly 1.5x is not a spike.
	ratio := predicted / historical
	if ratio <= spikeFactor {
		return nil, nil
	}

	if f.telemetry != nil {
		f.telemetry.Metrics.SpikeAlerts.WithLabelValues(category).Inc()
	}
	return &domain.SpikeAlert{
		WardID:             wardID,
		Category:           category,
		HorizonDays:        horizonDays,
		PredictedCount:     int(math.Round(predicted)),
		HistoricalAvgCount: int(math.Round(historical)),
		SpikeRatio:         round2(ratio),
		Message: fmt.Sprintf(
			"Forecast: ~%d %s complaints expected in ward %d over the next %d days, %.1fx the historical average.",
			int(math.Round(predicted)), category, wardID, horizonDays, ratio),
	}, nil
}

// pairModelFor returns the cached model for the pair, retraining when the
// entry is absent or older than the retrain interval.
func (f *Forecaster) pairModelFor(ctx context.Context, wardID int, category string) (*pairModel, error) {
	key := pairKey(wardID, category)
	now := f.now()

	f.mu.RLock()
	model, ok := f.cache[key]
	f.mu.RUnlock()
	if ok && now.Sub(model.trainedAt) < retrainAfter {
		if model.observations < minObservations {
			return nil, nil
		}
		return model, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// Another caller may have retrained while we waited for the lock.
	if model, ok = f.cache[key]; ok && now.Sub(model.trainedAt) < retrainAfter {
		if model.observations < minObservations {
			return nil, nil
		}
		return model, nil
	}

	model, err := f.train(ctx, wardID, category)
	if err != nil {
		return nil, err
	}
	f.cache[key] = model
	if model.observations < minObservations {
		return nil, nil
	}
	return model, nil
}

// train fits a fresh model from the pair's last year of tickets. Days with
// no tickets count as zero observations, so a quiet pair trains to low
// means rather than being skipped.
func (f *Forecaster) train(ctx context.Context, wardID int, category string) (*pairModel, error) {
	now := f.now()
	since := now.Add(-historyWindow)

	tickets, err := f.store.TicketsSince(ctx, wardID, category, since)
	if err != nil {
		return nil, fmt.Errorf("load ticket history for ward %d category %s: %w", wardID, category, err)
	}

	model := &pairModel{trainedAt: now}
	if len(tickets) == 0 {
		return model, nil
	}

	counts := make(map[string]int)
	first := tickets[0].CreatedAt
	for _, t := range tickets {
		if t.CreatedAt.Before(first) {
			first = t.CreatedAt
		}
		counts[t.CreatedAt.Format("2006-01-02")]++
	}

	// Zero-filled daily series from the first ticket through yesterday.
	var series []float64
	weekdaySeries := [7][]float64{}
	for day := startOfDay(first); day.Before(startOfDay(now)); day = day.AddDate(0, 0, 1) {
		count := float64(counts[day.Format("2006-01-02")])
		series = append(series, count)
		wd := day.Weekday()
		weekdaySeries[wd] = append(weekdaySeries[wd], count)
	}
	model.observations = len(series)
	if model.observations == 0 {
		return model, nil
	}

	model.dailyMean, _ = stats.Mean(series)
	recent := series
	if len(recent) > recentWindowDays {
		recent = recent[len(recent)-recentWindowDays:]
	}
	model.recentMean, _ = stats.Mean(recent)
	for wd, s := range weekdaySeries {
		if len(s) == 0 {
			model.weekdayMeans[wd] = model.dailyMean
			continue
		}
		model.weekdayMeans[wd], _ = stats.Mean(s)
	}

	f.logger.Debug("forecast model trained",
		logger.Int("ward_id", wardID),
		logger.String("category", category),
		logger.Int("observations", model.observations))
	return model, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
