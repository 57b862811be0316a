package priority

import (
	"context"
	"testing"
	"time"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/pkg/logger"
)

// Prediction must read only the atomic snapshot and counter; a full retrain
// holding the training mutex may take hundreds of milliseconds and must not
// stall concurrent scoring.
func TestPredict_DoesNotTakeTrainingMutex(t *testing.T) {
	svc := NewModelService(nil, NewFeatureBuilder(catalog.Default()), nil, logger.NewNop())
	ctx := context.Background()

	labels := []string{domain.LabelLow, domain.LabelMedium, domain.LabelHigh, domain.LabelCritical}
	for i := 0; i < 60; i++ {
		svc.TrainOnOutcome(ctx, FeatureInput{
			Category:          "pothole",
			DeptID:            "D01",
			ReportCount:       i % 15,
			DaysOpen:          i % 20,
			SocialMentions:    (i * 7) % 150,
			SLAHoursRemaining: float64(i % 72),
			Month:             1 + i%12,
			DayOfWeek:         i % 7,
			HourOfDay:         i % 24,
			WardID:            1 + i%50,
		}, labels[i%4])
	}

	features := svc.features.Vector(FeatureInput{Category: "pothole", DeptID: "D01", Month: 7})

	svc.mu.Lock()
	defer svc.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := svc.Predict(features); !ok {
			t.Error("Predict returned no label from a trained model")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Predict blocked while the training mutex was held")
	}
}
