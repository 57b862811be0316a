package telemetry_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janvedha/triage/internal/telemetry"
)

func TestNewProvider_IsolatedRegistries(t *testing.T) {
	// Two providers in one process must not collide on registration.
	a := telemetry.NewProvider()
	b := telemetry.NewProvider()

	require.NotNil(t, a.Metrics)
	require.NotNil(t, b.Metrics)

	a.RecordClassification("D01")
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.Classifications.WithLabelValues("D01")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Metrics.Classifications.WithLabelValues("D01")))
}

func TestProvider_Recorders(t *testing.T) {
	p := telemetry.NewProvider()

	p.RecordPipeline("completed", 120*time.Millisecond)
	p.RecordPipeline("rejected", 30*time.Millisecond)
	p.RecordStep("classify", 80*time.Millisecond)
	p.RecordPriority("HIGH", "rules")
	p.Metrics.LLMFallbacks.WithLabelValues("suggest").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.PipelinesProcessed.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.PipelinesProcessed.WithLabelValues("rejected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.PriorityOutcomes.WithLabelValues("HIGH", "rules")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.LLMFallbacks.WithLabelValues("suggest")))
}

func TestProvider_Handler(t *testing.T) {
	p := telemetry.NewProvider()
	p.RecordClassification("D04")

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "triage_classifications_total")
}
