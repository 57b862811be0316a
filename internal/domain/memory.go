package domain

import "time"

// MaxSampleTickets caps how many ticket references one memory record keeps.
const MaxSampleTickets = 5

// IssueMemoryRecord aggregates sightings of one issue category in one ward
// during one calendar month of one year. Records are never deleted; the
// current year's record is updated by rolling-average merge.
type IssueMemoryRecord struct {
	ID                  int64     `db:"id"`
	WardID              int       `db:"ward_id"`
	IssueCategory       string    `db:"issue_category"`
	DeptID              string    `db:"dept_id"`
	Month               int       `db:"month"`
	Year                int       `db:"year"`
	OccurrenceCount     int       `db:"occurrence_count"`
	AvgSeverityScore    float64   `db:"avg_severity_score"`
	Keywords            []string  `db:"-"`
	SampleTicketIDs     []string  `db:"-"`
	LastSeenDescription string    `db:"last_seen_description"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// SeasonalAlert is one entry of the read-only seasonal alerts query.
type SeasonalAlert struct {
	IssueCategory    string  `json:"issue_category"`
	DeptID           string  `json:"dept_id"`
	OccurrenceCount  int     `json:"occurrence_count"`
	AvgSeverityScore float64 `json:"avg_severity_score"`
	LastSeenYear     int     `json:"last_seen_year"`
	Recommendation   string  `json:"recommendation"`
}

// TicketRecord is the slice of a ticket the forecaster trains on.
type TicketRecord struct {
	TicketID      string    `db:"ticket_id"`
	WardID        int       `db:"ward_id"`
	IssueCategory string    `db:"issue_category"`
	CreatedAt     time.Time `db:"created_at"`
}

// SpikeAlert is raised when forecast volume exceeds the spike threshold.
type SpikeAlert struct {
	WardID             int     `json:"ward_id"`
	Category           string  `json:"category"`
	HorizonDays        int     `json:"horizon_days"`
	PredictedCount     int     `json:"predicted_count"`
	HistoricalAvgCount int     `json:"historical_avg_count"`
	SpikeRatio         float64 `json:"spike_ratio"`
	Message            string  `json:"message"`
}
