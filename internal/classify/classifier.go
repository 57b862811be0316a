// Package classify maps free-text civic complaints to a department, issue
// category and language. The primary path is a language-model call with a
// strict JSON contract; a deterministic keyword matcher takes over on any
// backend failure, so classification never raises.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

// Classification constants.
const (
	fallbackCategory    = "general_complaint"
	fallbackLanguage    = "en"
	fallbackConfidence  = 0.6 // keyword matcher hit at least one department
	noMatchConfidence   = 0.4 // keyword matcher found nothing
	llmConfidenceIfLost = 0.75
	maxSummaryChars     = 200
)

const clarificationQuestion = "Could you describe the issue in more detail?"

const systemPromptTemplate = `You are an expert civic complaint classifier for a municipal grievance system.
Your task is to analyze a citizen's complaint and extract structured information.

Available departments and their IDs:
%s
Respond ONLY with valid JSON matching this exact schema (no markdown, no explanation):
{
  "dept_id": "<department ID from the list above>",
  "dept_name": "<department name>",
  "issue_category": "<short snake_case category, e.g. pothole, sewage_overflow, street_light_out>",
  "issue_summary": "<1-2 sentence neutral summary of the complaint>",
  "location_extracted": "<extracted location text or 'Unknown'>",
  "language_detected": "<ISO 639-1 code, e.g. en, ta, hi, te>",
  "confidence": <float 0.0-1.0>,
  "needs_clarification": <true|false>,
  "clarification_question": "<question to ask if needs_clarification is true, else null>",
  "requires_human_review": <true if confidence is low>
}`

// ResultCache is the optional cache consulted before the LLM call.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.ClassificationResult, bool)
	Set(ctx context.Context, key string, result *domain.ClassificationResult)
}

// CacheKeyFunc derives the cache key for a complaint.
type CacheKeyFunc func(description, photoRef string) string

// Classifier classifies complaint text against the department catalogue.
type Classifier struct {
	llm       llm.Client
	catalog   *catalog.Catalog
	cache     ResultCache
	cacheKey  CacheKeyFunc
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// New creates a classifier. cache may be nil.
func New(client llm.Client, cat *catalog.Catalog, cache ResultCache, cacheKey CacheKeyFunc, tp *telemetry.Provider, log logger.Logger) *Classifier {
	return &Classifier{
		llm:       client,
		catalog:   cat,
		cache:     cache,
		cacheKey:  cacheKey,
		telemetry: tp,
		logger:    log,
	}
}

// classificationResponse is the strict JSON contract with the model.
type classificationResponse struct {
	DeptID                string  `json:"dept_id"`
	DeptName              string  `json:"dept_name"`
	IssueCategory         string  `json:"issue_category"`
	IssueSummary          string  `json:"issue_summary"`
	LocationExtracted     string  `json:"location_extracted"`
	LanguageDetected      string  `json:"language_detected"`
	Confidence            float64 `json:"confidence"`
	NeedsClarification    bool    `json:"needs_clarification"`
	ClarificationQuestion *string `json:"clarification_question"`
	RequiresHumanReview   bool    `json:"requires_human_review"`
}

// Classify classifies one complaint. It never returns an error: any backend
// or contract failure degrades to the keyword fallback.
func (c *Classifier) Classify(ctx context.Context, description, photoRef string) domain.ClassificationResult {
	var key string
	if c.cache != nil && c.cacheKey != nil {
		key = c.cacheKey(description, photoRef)
		if cached, ok := c.cache.Get(ctx, key); ok {
			c.logger.Debug("classification cache hit")
			return *cached
		}
	}

	result, err := c.classifyLLM(ctx, description, photoRef)
	if err != nil {
		c.logger.Warn("llm classification failed, using keyword fallback", logger.Error(err))
		if c.telemetry != nil {
			c.telemetry.Metrics.LLMFallbacks.WithLabelValues("classify").Inc()
		}
		return c.keywordFallback(description)
	}

	if c.cache != nil && key != "" {
		c.cache.Set(ctx, key, &result)
	}
	return result
}

// classifyLLM runs the language-model path.
func (c *Classifier) classifyLLM(ctx context.Context, description, photoRef string) (domain.ClassificationResult, error) {
	userContent := "Complaint: " + description
	if photoRef != "" {
		userContent += "\n[Photo attached: " + photoRef + "]"
	}

	raw, err := c.llm.Complete(ctx, []llm.Message{
		llm.System(fmt.Sprintf(systemPromptTemplate, c.catalog.PromptDepartmentList())),
		llm.User(userContent),
	})
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	var resp classificationResponse
	if err := llm.DecodeJSON(raw, &resp); err != nil {
		return domain.ClassificationResult{}, err
	}

	return c.normalize(resp, description), nil
}

// normalize applies catalogue validation and the review-threshold invariant
// to a decoded model response.
func (c *Classifier) normalize(resp classificationResponse, description string) domain.ClassificationResult {
	dept := c.catalog.Department(resp.DeptID)

	confidence := resp.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = llmConfidenceIfLost
	}

	category := resp.IssueCategory
	if category == "" {
		category = fallbackCategory
	}
	summary := resp.IssueSummary
	if summary == "" {
		summary = truncate(description, maxSummaryChars)
	}
	location := resp.LocationExtracted
	if location == "" {
		location = "Unknown"
	}
	language := resp.LanguageDetected
	if language == "" {
		language = fallbackLanguage
	}

	result := domain.ClassificationResult{
		DeptID:              dept.ID,
		DeptName:            dept.Name,
		IssueCategory:       category,
		IssueSummary:        summary,
		LocationExtracted:   location,
		LanguageDetected:    language,
		Confidence:          confidence,
		NeedsClarification:  resp.NeedsClarification,
		RequiresHumanReview: resp.RequiresHumanReview,
	}
	if resp.ClarificationQuestion != nil {
		result.ClarificationQuestion = *resp.ClarificationQuestion
	}
	if result.Confidence < domain.ReviewConfidenceThreshold {
		result.RequiresHumanReview = true
	}
	return result
}

// keywordFallback picks the department whose keyword list overlaps the
// description most. Ties favor the default department.
func (c *Classifier) keywordFallback(description string) domain.ClassificationResult {
	lower := strings.ToLower(description)

	bestID := catalog.DefaultDeptID
	bestHits := 0
	for _, id := range c.catalog.DepartmentIDs() {
		dept := c.catalog.Department(id)
		hits := 0
		for _, kw := range dept.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && id == catalog.DefaultDeptID) {
			bestID = id
			bestHits = hits
		}
	}

	dept := c.catalog.Department(bestID)
	result := domain.ClassificationResult{
		DeptID:              dept.ID,
		DeptName:            dept.Name,
		IssueCategory:       fallbackCategory,
		IssueSummary:        truncate(description, maxSummaryChars),
		LocationExtracted:   "Unknown",
		LanguageDetected:    fallbackLanguage,
		Confidence:          fallbackConfidence,
		NeedsClarification:  false,
		RequiresHumanReview: true,
	}
	if bestHits == 0 {
		result.Confidence = noMatchConfidence
		result.NeedsClarification = true
		result.ClarificationQuestion = clarificationQuestion
	}
	return result
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
