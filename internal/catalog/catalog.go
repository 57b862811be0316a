// Package catalog holds the injectable reference data the triage engine
// scores and routes against: the department catalogue, severity tables and
// keyword lists. Defaults are compiled in; a YAML catalogue file can replace
// any section without a code change.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Department is one entry of the municipal department catalogue.
type Department struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	SLADays  int      `yaml:"sla_days"`
}

// Catalog is the full injectable data set.
type Catalog struct {
	Departments         []Department   `yaml:"departments"`
	SafetyKeywords      []string       `yaml:"safety_keywords"`
	SeverityMap         map[string]int `yaml:"severity_map"`
	LocationScores      map[string]int `yaml:"location_scores"`
	RecurringCategories []string       `yaml:"recurring_categories"`

	byID map[string]*Department
}

// Fallback values for lookups that miss their table.
const (
	DefaultDeptID        = "D05" // solid waste, the fixed tie-break department
	DefaultSeverity      = 15
	DefaultLocationScore = 4
	DefaultSLAHours      = 168 // 7 days
)

// Load reads a catalogue YAML file. Missing sections fall back to the
// compiled-in defaults so a partial override file is valid.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.index()
	return c, nil
}

// index rebuilds the department lookup map. Called after any mutation of
// the Departments slice.
func (c *Catalog) index() {
	c.byID = make(map[string]*Department, len(c.Departments))
	for i := range c.Departments {
		c.byID[c.Departments[i].ID] = &c.Departments[i]
	}
}

// Department returns the department for an id, or the default department
// when the id is unknown.
func (c *Catalog) Department(id string) Department {
	if d, ok := c.byID[id]; ok {
		return *d
	}
	return *c.byID[DefaultDeptID]
}

// HasDepartment reports whether the id exists in the catalogue.
func (c *Catalog) HasDepartment(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// DefaultDepartment returns the fixed tie-break department.
func (c *Catalog) DefaultDepartment() Department {
	return *c.byID[DefaultDeptID]
}

// DepartmentIDs returns all catalogue ids in ascending order. The order is
// part of the feature-vector contract, so it must be deterministic.
func (c *Catalog) DepartmentIDs() []string {
	ids := make([]string, 0, len(c.Departments))
	for _, d := range c.Departments {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return ids
}

// BaseSeverity returns the base severity for an issue category. Unknown
// categories fall back to the default severity, never an error.
func (c *Catalog) BaseSeverity(category string) int {
	if s, ok := c.SeverityMap[category]; ok {
		return s
	}
	return DefaultSeverity
}

// LocationScore returns the population-impact bonus for a location type.
func (c *Catalog) LocationScore(locationType string) int {
	if s, ok := c.LocationScores[locationType]; ok {
		return s
	}
	return DefaultLocationScore
}

// LocationType normalizes free location text to a known location-type key.
// Anything that is not exactly a type key (street names, landmarks) maps to
// "unknown" rather than being scored as if it were one.
func (c *Catalog) LocationType(text string) string {
	key := strings.ToLower(strings.TrimSpace(text))
	if _, ok := c.LocationScores[key]; ok {
		return key
	}
	return "unknown"
}

// ContainsSafetyKeyword reports whether the description mentions any curated
// safety keyword (case-insensitive substring match).
func (c *Catalog) ContainsSafetyKeyword(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range c.SafetyKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsRecurring reports whether the issue category matches the known-recurring
// set. Matching is substring-based so "burst_pipe_flooding" hits "flood".
func (c *Catalog) IsRecurring(category string) bool {
	lower := strings.ToLower(category)
	for _, rc := range c.RecurringCategories {
		if strings.Contains(lower, rc) {
			return true
		}
	}
	return false
}

// SLAHours returns the department's SLA converted to hours, or the default
// when the department is unknown or carries no SLA.
func (c *Catalog) SLAHours(deptID string) float64 {
	if d, ok := c.byID[deptID]; ok && d.SLADays > 0 {
		return float64(d.SLADays) * 24
	}
	return DefaultSLAHours
}

// PromptDepartmentList renders the catalogue for an LLM system prompt, one
// line per department with its first few keywords.
func (c *Catalog) PromptDepartmentList() string {
	const maxPromptKeywords = 4

	var b strings.Builder
	for _, id := range c.DepartmentIDs() {
		d := c.byID[id]
		kws := d.Keywords
		if len(kws) > maxPromptKeywords {
			kws = kws[:maxPromptKeywords]
		}
		fmt.Fprintf(&b, "  %s: %s (handles: %s)\n", d.ID, d.Name, strings.Join(kws, ", "))
	}
	return b.String()
}
