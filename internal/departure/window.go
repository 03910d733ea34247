package departure

import "time"

// DefaultWindow is the look-ahead interval for upcoming departures.
const DefaultWindow = 2 * time.Hour

// InWindow reports whether at lies within [now, now+window].
// Comparison is at minute resolution: now is truncated to the minute.
func InWindow(at, now time.Time, window time.Duration) bool {
	start := now.Truncate(time.Minute)
	return !at.Before(start) && !at.After(start.Add(window))
}

// serviceDays returns the calendar days the window [start, end] touches:
// today, plus tomorrow when the window crosses midnight.
func serviceDays(start, end time.Time) []time.Time {
	today := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	days := []time.Time{today}
	tomorrow := today.AddDate(0, 0, 1)
	if !end.Before(tomorrow) {
		days = append(days, tomorrow)
	}
	return days
}
