package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/classify"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/pkg/logger"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(_ context.Context, _ []llm.Message) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeCache struct {
	entries map[string]*domain.ClassificationResult
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) (*domain.ClassificationResult, bool) {
	r, ok := f.entries[key]
	return r, ok
}

func (f *fakeCache) Set(_ context.Context, key string, result *domain.ClassificationResult) {
	f.entries[key] = result
	f.sets++
}

func newClassifier(client llm.Client, cache classify.ResultCache) *classify.Classifier {
	var keyFn classify.CacheKeyFunc
	if cache != nil {
		keyFn = func(description, photoRef string) string { return description + "|" + photoRef }
	}
	return classify.New(client, catalog.Default(), cache, keyFn, nil, logger.NewNop())
}

func TestClassify_LLMPath(t *testing.T) {
	client := &fakeLLM{response: `{
		"dept_id": "D04",
		"dept_name": "Sewage & Drainage",
		"issue_category": "sewage_overflow",
		"issue_summary": "Sewage overflowing onto the street.",
		"location_extracted": "Gandhi Nagar 4th Street",
		"language_detected": "en",
		"confidence": 0.92,
		"needs_clarification": false,
		"clarification_question": null,
		"requires_human_review": false
	}`}

	result := newClassifier(client, nil).Classify(context.Background(), "sewage overflowing near Gandhi Nagar", "")

	if result.DeptID != "D04" {
		t.Errorf("DeptID = %q, want D04", result.DeptID)
	}
	if result.IssueCategory != "sewage_overflow" {
		t.Errorf("IssueCategory = %q", result.IssueCategory)
	}
	if result.Confidence != 0.92 {
		t.Errorf("Confidence = %v", result.Confidence)
	}
	if result.RequiresHumanReview {
		t.Error("RequiresHumanReview = true for high confidence")
	}
}

func TestClassify_LowConfidenceForcesReview(t *testing.T) {
	client := &fakeLLM{response: `{
		"dept_id": "D03",
		"dept_name": "Water Supply",
		"issue_category": "dirty_water",
		"issue_summary": "Possibly dirty water.",
		"location_extracted": "Unknown",
		"language_detected": "en",
		"confidence": 0.5,
		"needs_clarification": false,
		"clarification_question": null,
		"requires_human_review": false
	}`}

	result := newClassifier(client, nil).Classify(context.Background(), "water looks strange", "")

	if !result.RequiresHumanReview {
		t.Error("confidence below threshold must force human review")
	}
}

func TestClassify_UnknownDeptFallsBackToDefault(t *testing.T) {
	client := &fakeLLM{response: `{
		"dept_id": "D42",
		"dept_name": "Invented",
		"issue_category": "general_complaint",
		"issue_summary": "x",
		"location_extracted": "Unknown",
		"language_detected": "en",
		"confidence": 0.9,
		"needs_clarification": false,
		"clarification_question": null,
		"requires_human_review": false
	}`}

	result := newClassifier(client, nil).Classify(context.Background(), "something odd", "")

	if result.DeptID != catalog.DefaultDeptID {
		t.Errorf("DeptID = %q, want default %q", result.DeptID, catalog.DefaultDeptID)
	}
}

func TestClassify_FallbackUniqueKeyword(t *testing.T) {
	client := &fakeLLM{err: errors.New("backend down")}

	// "pothole" appears only in D01's keyword list.
	result := newClassifier(client, nil).Classify(context.Background(), "huge pothole outside my house", "")

	if result.DeptID != "D01" {
		t.Errorf("DeptID = %q, want D01", result.DeptID)
	}
	if result.Confidence < 0.6 {
		t.Errorf("Confidence = %v, want >= 0.6", result.Confidence)
	}
	if result.NeedsClarification {
		t.Error("NeedsClarification = true with a keyword hit")
	}
	if !result.RequiresHumanReview {
		t.Error("fallback classifications must be flagged for review")
	}
}

func TestClassify_FallbackNoHits(t *testing.T) {
	client := &fakeLLM{response: "not json at all"}

	result := newClassifier(client, nil).Classify(context.Background(), "qwerty asdf zxcv", "")

	if !result.NeedsClarification {
		t.Error("NeedsClarification = false with zero keyword hits")
	}
	if result.ClarificationQuestion == "" {
		t.Error("missing clarification question")
	}
	if !result.RequiresHumanReview {
		t.Error("RequiresHumanReview = false")
	}
	if result.Confidence > 0.6 {
		t.Errorf("Confidence = %v, want <= 0.6", result.Confidence)
	}
}

func TestClassify_CacheHitSkipsLLM(t *testing.T) {
	cached := &domain.ClassificationResult{DeptID: "D06", DeptName: "Street Lighting", Confidence: 0.9}
	cache := &fakeCache{entries: map[string]*domain.ClassificationResult{
		"street light broken|": cached,
	}}
	client := &fakeLLM{response: "{}"}

	result := newClassifier(client, cache).Classify(context.Background(), "street light broken", "")

	if client.calls != 0 {
		t.Errorf("llm called %d times on cache hit", client.calls)
	}
	if result.DeptID != "D06" {
		t.Errorf("DeptID = %q, want cached D06", result.DeptID)
	}
}

func TestClassify_CacheMissStoresResult(t *testing.T) {
	cache := &fakeCache{entries: map[string]*domain.ClassificationResult{}}
	client := &fakeLLM{response: `{
		"dept_id": "D05",
		"dept_name": "Solid Waste Management",
		"issue_category": "garbage",
		"issue_summary": "Garbage piling up.",
		"location_extracted": "Unknown",
		"language_detected": "en",
		"confidence": 0.85,
		"needs_clarification": false,
		"clarification_question": null,
		"requires_human_review": false
	}`}

	newClassifier(client, cache).Classify(context.Background(), "garbage piling up", "")

	if cache.sets != 1 {
		t.Errorf("cache.Set called %d times, want 1", cache.sets)
	}
}
