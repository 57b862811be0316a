package priority

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// Training gates.
const (
	// minTrainingSamples is the confirmed-outcome count below which the
	// model returns no prediction and scoring stays rule-only.
	minTrainingSamples = 50

	// retrainEvery triggers a full retrain on every Nth accepted sample.
	retrainEvery = 10
)

// ModelStore persists online-model states. Saving activates the new state
// and deactivates the previous one in the same transaction; old states are
// retained for auditability.
type ModelStore interface {
	LoadActive(ctx context.Context) (*domain.ModelState, error)
	SaveActive(ctx context.Context, state *domain.ModelState) error
}

// ModelService owns the online priority model's process-wide state: the
// training buffer, the active model snapshot and the retrain guard. One
// instance exists per process, constructed at startup and injected.
//
// Prediction reads go through the atomic snapshot pointer and the atomic
// sample counter and take no lock; the mutex only serializes training, so a
// full retrain never stalls concurrent scoring.
type ModelService struct {
	store     ModelStore
	features  *FeatureBuilder
	telemetry *telemetry.Provider
	logger    logger.Logger

	active      atomic.Pointer[softmaxModel]
	sampleCount atomic.Int64

	mu      sync.Mutex
	samples []sample
}

// NewModelService creates the service. store may be nil, in which case state
// is in-memory only for the process lifetime.
func NewModelService(store ModelStore, features *FeatureBuilder, tp *telemetry.Provider, log logger.Logger) *ModelService {
	return &ModelService{
		store:     store,
		features:  features,
		telemetry: tp,
		logger:    log,
	}
}

// Load rehydrates the active persisted state, if any. A load failure is
// logged and the service starts cold; it never fails startup.
func (s *ModelService) Load(ctx context.Context) {
	if s.store == nil {
		return
	}

	state, err := s.store.LoadActive(ctx)
	if err != nil {
		s.logger.Warn("failed to load active model state, starting cold", logger.Error(err))
		return
	}
	if state == nil {
		s.logger.Info("no persisted model state, starting cold")
		return
	}

	model, samples, err := unmarshalParams(state.Params, s.features.FeatureNames())
	if err != nil {
		s.logger.Warn("persisted model state unusable, starting cold", logger.Error(err))
		return
	}

	s.mu.Lock()
	s.samples = samples
	s.mu.Unlock()
	s.sampleCount.Store(int64(state.SampleCount))
	s.active.Store(model)

	s.logger.Info("model state loaded",
		logger.Int64("state_id", state.ID),
		logger.Int("sample_count", state.SampleCount),
		logger.Time("trained_at", state.TrainedAt))
}

// SampleCount returns the cumulative confirmed-outcome count.
func (s *ModelService) SampleCount() int {
	return int(s.sampleCount.Load())
}

// Predict returns the model's label for the feature vector, or false while
// the model has not reached the minimum sample threshold. Lock-free against
// the active snapshot.
func (s *ModelService) Predict(features []float64) (string, bool) {
	if s.SampleCount() < minTrainingSamples {
		return "", false
	}
	model := s.active.Load()
	if model == nil {
		return "", false
	}
	label := model.predict(features)
	if label == "" {
		return "", false
	}
	return label, true
}

// TrainOnOutcome appends one confirmed (features, label) sample and retrains
// on every Nth sample. Invalid labels are dropped; persistence failures are
// logged and training continues in memory.
func (s *ModelService) TrainOnOutcome(ctx context.Context, in FeatureInput, confirmedLabel string) {
	label := strings.ToUpper(strings.TrimSpace(confirmedLabel))
	if !validLabel(label) {
		s.logger.Warn("dropping training sample with unknown label", logger.String("label", confirmedLabel))
		return
	}

	features := s.features.Vector(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample{Features: features, Label: label})
	count := s.sampleCount.Add(1)
	if s.telemetry != nil {
		s.telemetry.Metrics.TrainingSamples.Inc()
	}

	if count%retrainEvery != 0 {
		return
	}
	s.retrainLocked(ctx)
}

// retrainLocked fits a fresh model from the full buffer and persists it.
// Caller holds s.mu.
func (s *ModelService) retrainLocked(ctx context.Context) {
	start := time.Now()
	model, err := fitSoftmax(s.samples)
	if err != nil {
		s.logger.Error("model retrain failed", logger.Error(err))
		return
	}
	s.active.Store(model)

	if s.telemetry != nil {
		s.telemetry.Metrics.ModelRetrains.Inc()
	}
	s.logger.Info("model retrained",
		logger.Int("sample_count", int(s.sampleCount.Load())),
		logger.Duration("took", time.Since(start)))

	if s.store == nil {
		return
	}
	params, err := marshalParams(model, s.features.FeatureNames(), s.samples)
	if err != nil {
		s.logger.Error("model state serialization failed", logger.Error(err))
		return
	}
	state := &domain.ModelState{
		Params:       params,
		FeatureNames: s.features.FeatureNames(),
		SampleCount:  int(s.sampleCount.Load()),
		IsActive:     true,
		TrainedAt:    time.Now().UTC(),
	}
	if err := s.store.SaveActive(ctx, state); err != nil {
		s.logger.Error("model state persistence failed, continuing in memory", logger.Error(err))
	}
}

func validLabel(label string) bool {
	for _, c := range classOrder {
		if c == label {
			return true
		}
	}
	return false
}
