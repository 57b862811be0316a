package domain

// Department IDs used throughout the triage engine. The full catalogue
// (names, keywords, SLA days) lives in internal/catalog and is injectable;
// only the identifiers are fixed here because the priority feature vector
// one-hot encodes them.
const (
	DeptRoads        = "D01"
	DeptBuildings    = "D02"
	DeptWater        = "D03"
	DeptSewage       = "D04"
	DeptSolidWaste   = "D05"
	DeptStreetLights = "D06"
	DeptParks        = "D07"
	DeptHealth       = "D08"
	DeptFire         = "D09"
	DeptTraffic      = "D10"
	DeptRevenue      = "D11"
	DeptWelfare      = "D12"
	DeptEducation    = "D13"
	DeptDisaster     = "D14"
)

// ReviewConfidenceThreshold is the classification confidence below which
// human review is mandatory.
const ReviewConfidenceThreshold = 0.75

// ClassificationResult is the immutable output of classifying one complaint.
type ClassificationResult struct {
	DeptID                string  `json:"dept_id"`
	DeptName              string  `json:"dept_name"`
	IssueCategory         string  `json:"issue_category"`   // short snake_case code, e.g. "sewage_overflow"
	IssueSummary          string  `json:"issue_summary"`
	LocationExtracted     string  `json:"location_extracted"`
	LanguageDetected      string  `json:"language_detected"` // ISO 639-1
	Confidence            float64 `json:"confidence"`        // 0.0-1.0
	NeedsClarification    bool    `json:"needs_clarification"`
	ClarificationQuestion string  `json:"clarification_question,omitempty"`
	RequiresHumanReview   bool    `json:"requires_human_review"`
}

// RoutingResult is the confirmed (or corrected) department assignment
// derived from a ClassificationResult.
type RoutingResult struct {
	DeptID             string `json:"dept_id"`
	DeptName           string `json:"dept_name"`
	RoutingConfirmed   bool   `json:"routing_confirmed"` // false when the router corrected the classifier
	RoutingReason      string `json:"routing_reason"`
	EscalationRequired bool   `json:"escalation_required"`
	EscalationReason   string `json:"escalation_reason,omitempty"`
}

// PipelineResult is the consolidated output of one pipeline run.
type PipelineResult struct {
	RunID          string               `json:"run_id"`
	Classification ClassificationResult `json:"classification"`
	Routing        RoutingResult        `json:"routing"`
	Priority       PriorityOutcome      `json:"priority"`
	Suggestions    []string             `json:"suggestions"`
	SeasonalAlert  string               `json:"seasonal_alert,omitempty"`
	ProcessingMs   int64                `json:"processing_time_ms"`
}
