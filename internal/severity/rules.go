// Package severity implements the deterministic priority rule engine. It is
// a pure function over ticket attributes: no I/O, no hidden state, identical
// inputs always yield identical results.
package severity

import (
	"math"

	"github.com/janvedha/triage/internal/catalog"
	"github.com/janvedha/triage/internal/domain"
)

// Factor caps and weights.
const (
	severityCap       = 30 // base severity + safety bonus, capped
	safetyBonus       = 5
	reportWeight      = 3  // per-report contribution to population impact
	reportImpactCap   = 15 // report contribution capped before location bonus
	maxScore          = 100
)

// Time-decay steps by days open.
const (
	decayNone   = 0  // <= 1 day
	decayShort  = 5  // <= 3 days
	decayMedium = 10 // <= 7 days
	decayLong   = 15 // <= 14 days
	decayStale  = 20 // > 14 days
)

// SLA-proximity steps by hours remaining; breached means <= 0.
const (
	slaBreached = 15
	slaImminent = 12 // <= 6h
	slaNear     = 8  // <= 24h
	slaSoon     = 4  // <= 48h
)

// Social-amplification steps by mention count.
const (
	socialViral    = 10 // > 100 mentions
	socialTrending = 7  // > 50
	socialNoticed  = 4  // > 10
)

// Input carries the ticket attributes the rule engine scores.
type Input struct {
	Category          string
	ReportCount       int
	LocationType      string
	DaysOpen          int
	HoursToSLABreach  float64
	SocialMentions    int
	Description       string
}

// Engine scores tickets against the injected catalogue tables.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a rule engine over the given catalogue.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Score computes the deterministic 0-100 priority score and its label from
// five independently capped additive factors.
func (e *Engine) Score(in Input) (float64, string) {
	score := float64(e.severityFactor(in.Category, in.Description) +
		e.impactFactor(in.ReportCount, in.LocationType) +
		timeDecayFactor(in.DaysOpen) +
		slaFactor(in.HoursToSLABreach) +
		socialFactor(in.SocialMentions))

	score = math.Min(maxScore, math.Max(0, score))
	return round2(score), domain.ScoreToLabel(score)
}

// severityFactor is the category base severity plus a safety-keyword bonus,
// capped at severityCap.
func (e *Engine) severityFactor(category, description string) int {
	base := e.catalog.BaseSeverity(category)
	if e.catalog.ContainsSafetyKeyword(description) {
		base += safetyBonus
	}
	return minInt(severityCap, base)
}

// impactFactor estimates population impact from report volume and location.
// The report contribution is capped; the location bonus is not.
func (e *Engine) impactFactor(reportCount int, locationType string) int {
	return minInt(reportImpactCap, reportCount*reportWeight) + e.catalog.LocationScore(locationType)
}

func timeDecayFactor(daysOpen int) int {
	switch {
	case daysOpen <= 1:
		return decayNone
	case daysOpen <= 3:
		return decayShort
	case daysOpen <= 7:
		return decayMedium
	case daysOpen <= 14:
		return decayLong
	default:
		return decayStale
	}
}

func slaFactor(hoursRemaining float64) int {
	switch {
	case hoursRemaining <= 0:
		return slaBreached
	case hoursRemaining <= 6:
		return slaImminent
	case hoursRemaining <= 24:
		return slaNear
	case hoursRemaining <= 48:
		return slaSoon
	default:
		return 0
	}
}

func socialFactor(mentions int) int {
	switch {
	case mentions > 100:
		return socialViral
	case mentions > 50:
		return socialTrending
	case mentions > 10:
		return socialNoticed
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
