package departure

import "time"

const (
	DefaultUpcomingCount    = 3
	DefaultUpcomingInterval = 15 * time.Minute
)

// Upcoming returns n instants spaced interval apart, starting one interval after base.
// The result is not clamped to any look-ahead window.
func Upcoming(base time.Time, n int, interval time.Duration) []time.Time {
	if n <= 0 || interval <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	for k := 1; k <= n; k++ {
		out[k-1] = base.Add(time.Duration(k) * interval)
	}
	return out
}

// FormatUpcoming is Upcoming rendered with TimeLayout. It never returns nil.
func FormatUpcoming(base time.Time, n int, interval time.Duration) []string {
	times := Upcoming(base, n, interval)
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(TimeLayout)
	}
	return out
}
