package departure

import (
	"sort"
	"time"
)

// Engine projects scheduled departures into the look-ahead window.
// The zero value uses the package defaults.
type Engine struct {
	Window           time.Duration
	UpcomingCount    int
	UpcomingInterval time.Duration
}

func (e Engine) window() time.Duration {
	if e.Window > 0 {
		return e.Window
	}
	return DefaultWindow
}

func (e Engine) upcomingCount() int {
	if e.UpcomingCount > 0 {
		return e.UpcomingCount
	}
	return DefaultUpcomingCount
}

func (e Engine) upcomingInterval() time.Duration {
	if e.UpcomingInterval > 0 {
		return e.UpcomingInterval
	}
	return DefaultUpcomingInterval
}

// Project returns the departures from rows that run inside the window starting at now,
// merged with any live status keyed by scheduled id, sorted by scheduled instant.
// When the window crosses midnight, rows are also tried against the next day and its weekday.
func (e Engine) Project(rows []Scheduled, live map[string]LiveStatus, now time.Time) []Projection {
	window := e.window()
	start := now.Truncate(time.Minute)
	days := serviceDays(start, start.Add(window))

	result := make([]Projection, 0, len(rows))
	for _, row := range rows {
		if !row.Active {
			continue
		}
		for _, day := range days {
			if !RunsOn(row.Weekdays, day) {
				continue
			}
			at := row.Time.On(day)
			if !InWindow(at, now, window) {
				continue
			}

			var overlay *LiveStatus
			if ls, ok := live[row.ID]; ok {
				overlay = &ls
			}
			p := Merge(row, overlay, at)
			p.NextDepartures = FormatUpcoming(at, e.upcomingCount(), e.upcomingInterval())
			result = append(result, p)
			break
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Departs.Equal(result[j].Departs) {
			return result[i].Departs.Before(result[j].Departs)
		}
		return result[i].ID < result[j].ID
	})
	return result
}
