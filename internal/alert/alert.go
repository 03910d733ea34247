package alert

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Alert types.
const (
	TypeWarning    = "warning"
	TypeInfo       = "info"
	TypeDisruption = "disruption"
)

// Severity ranks alerts for display. Higher is more severe.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// ParseSeverity accepts "low", "medium" or "high" in any case.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	*s = ParseSeverity(v)
	return nil
}

// Alert is a service disruption notice affecting one or more lines.
type Alert struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Severity      Severity   `json:"severity"`
	AffectedLines []string   `json:"affectedLines"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	IsActive      bool       `json:"isActive"`
}

// ActiveAt reports whether the alert is flagged active and now lies in [start, end].
// A missing end time means open-ended.
func (a Alert) ActiveAt(now time.Time) bool {
	if !a.IsActive || a.StartTime.After(now) {
		return false
	}
	return a.EndTime == nil || !a.EndTime.Before(now)
}

// Affects reports whether line is among the alert's affected lines.
func (a Alert) Affects(line string) bool {
	for _, l := range a.AffectedLines {
		if l == line {
			return true
		}
	}
	return false
}

// LineSet is a set of line numbers.
type LineSet map[string]struct{}

// NewLineSet builds a set from line numbers.
func NewLineSet(lines ...string) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether line is in the set.
func (s LineSet) Has(line string) bool {
	_, ok := s[line]
	return ok
}
