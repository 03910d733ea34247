package departure

import (
	"fmt"
	"time"
)

// Status values carried by live tracking data.
const (
	StatusOnTime    = "on-time"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
)

// TimeLayout is the display format for every departure time string.
const TimeLayout = "15:04"

// Clock is a scheduled time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" or "HH:MM:SS". Seconds are dropped.
func ParseClock(s string) (Clock, error) {
	var h, m, sec int
	n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if n < 2 {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

// String formats the clock as "15:04".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant this clock time falls on for the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, date.Location())
}

// Scheduled is one timetable row joined with its line and stop.
type Scheduled struct {
	ID            string
	LineID        string
	LineNumber    string
	TransportType string
	StopID        string
	StopName      string
	Destination   string
	Time          Clock
	Platform      string
	Weekdays      []int // ISO weekdays, Monday = 1
	Active        bool
}

// LiveStatus is the latest tracking state for a scheduled departure.
type LiveStatus struct {
	ScheduledID     string
	Status          string
	DelayMinutes    int
	ActualDeparture *time.Time
	UpdatedAt       time.Time
}

// Projection is the display-ready merge of a scheduled departure and its live status.
type Projection struct {
	ID                 string   `json:"id"`
	TransportType      string   `json:"transportType"`
	LineNumber         string   `json:"lineNumber"`
	Destination        string   `json:"destination"`
	ScheduledDeparture string   `json:"scheduledDeparture"`
	ActualDeparture    string   `json:"actualDeparture,omitempty"`
	Platform           string   `json:"platform,omitempty"`
	Status             string   `json:"status"`
	DelayMinutes       *int     `json:"delayMinutes,omitempty"`
	NextDepartures     []string `json:"nextDepartures"`
	StopID             string   `json:"stopId"`
	StopName           string   `json:"stopName"`

	// Departs is the scheduled instant the projection was built for.
	Departs time.Time `json:"-"`
}
