// Package route re-validates the classifier's department choice and flags
// escalation needs. Routing must never block ticket creation: on any failure
// the classifier's department is accepted unchanged.
package route

import (
	"context"
	"fmt"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/internal/llm"
	"github.com/janvedha/triage/internal/telemetry"
	"github.com/janvedha/triage/pkg/logger"
)

const systemPromptTemplate = `You are a senior civic administrator deciding which government department should handle a complaint.
You have been given an initial classification. Your job is to confirm it or suggest a better routing.

Available departments:
%s
Consider:
1. Which department is PRIMARILY responsible?
2. Does this need escalation (safety/health emergency)?
3. Are multiple departments involved? If so, pick the LEAD department only.

Respond ONLY with valid JSON:
{
  "dept_id": "<confirmed or corrected department ID>",
  "dept_name": "<department name>",
  "routing_confirmed": <true if original routing was correct, false if corrected>,
  "routing_reason": "<1-2 sentence explanation for this routing decision>",
  "escalation_required": <true|false>,
  "escalation_reason": "<reason if escalation required, else null>"
}`

const fallbackReason = "Routing accepted from classifier (routing backend unavailable)."

// Router confirms or corrects department routing.
type Router struct {
	llm       llm.Client
	catalog   *catalog.Catalog
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// New creates a router.
func New(client llm.Client, cat *catalog.Catalog, tp *telemetry.Provider, log logger.Logger) *Router {
	return &Router{llm: client, catalog: cat, telemetry: tp, logger: log}
}

// routingResponse is the strict JSON contract with the model.
type routingResponse struct {
	DeptID             string  `json:"dept_id"`
	DeptName           string  `json:"dept_name"`
	RoutingConfirmed   bool    `json:"routing_confirmed"`
	RoutingReason      string  `json:"routing_reason"`
	EscalationRequired bool    `json:"escalation_required"`
	EscalationReason   *string `json:"escalation_reason"`
}

// Route confirms the classification's department. It never returns an error;
// on failure the classifier's choice stands, marked confirmed, without
// escalation.
func (r *Router) Route(ctx context.Context, description string, classification domain.ClassificationResult) domain.RoutingResult {
	result, err := r.routeLLM(ctx, description, classification)
	if err != nil {
		r.logger.Warn("routing confirmation failed, accepting classifier department",
			logger.String("dept_id", classification.DeptID),
			logger.Error(err))
		if r.telemetry != nil {
			r.telemetry.Metrics.LLMFallbacks.WithLabelValues("route").Inc()
		}
		return domain.RoutingResult{
			DeptID:             classification.DeptID,
			DeptName:           classification.DeptName,
			RoutingConfirmed:   true,
			RoutingReason:      fallbackReason,
			EscalationRequired: false,
		}
	}
	return result
}

func (r *Router) routeLLM(ctx context.Context, description string, classification domain.ClassificationResult) (domain.RoutingResult, error) {
	deptList := ""
	for _, id := range r.catalog.DepartmentIDs() {
		d := r.catalog.Department(id)
		deptList += fmt.Sprintf("  %s: %s\n", d.ID, d.Name)
	}

	userContent := fmt.Sprintf(
		"Complaint: %s\n\nInitial Classification:\n  Department: %s - %s\n  Category: %s\n  Summary: %s\n  Confidence: %.2f",
		description, classification.DeptID, classification.DeptName,
		classification.IssueCategory, classification.IssueSummary, classification.Confidence)

	raw, err := r.llm.Complete(ctx, []llm.Message{
		llm.System(fmt.Sprintf(systemPromptTemplate, deptList)),
		llm.User(userContent),
	})
	if err != nil {
		return domain.RoutingResult{}, err
	}

	var resp routingResponse
	if err := llm.DecodeJSON(raw, &resp); err != nil {
		return domain.RoutingResult{}, err
	}

	// A corrected department must exist in the catalogue; otherwise keep the
	// classifier's choice rather than route into a void.
	deptID := resp.DeptID
	if !r.catalog.HasDepartment(deptID) {
		deptID = classification.DeptID
	}
	dept := r.catalog.Department(deptID)

	reason := resp.RoutingReason
	if reason == "" {
		reason = "Routing confirmed."
	}

	result := domain.RoutingResult{
		DeptID:             dept.ID,
		DeptName:           dept.Name,
		RoutingConfirmed:   resp.RoutingConfirmed || dept.ID == classification.DeptID,
		RoutingReason:      reason,
		EscalationRequired: resp.EscalationRequired,
	}
	if resp.EscalationReason != nil {
		result.EscalationReason = *resp.EscalationReason
	}
	return result, nil
}
