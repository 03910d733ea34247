package alert

import (
	"sort"
	"time"
)

// Active returns the alerts active at now, deduplicated and ordered.
func Active(alerts []Alert, now time.Time) []Alert {
	return collect(alerts, now, func(Alert) bool { return true })
}

// ByLine returns active alerts affecting line, most severe and most recent first.
func ByLine(alerts []Alert, line string, now time.Time) []Alert {
	return collect(alerts, now, func(a Alert) bool { return a.Affects(line) })
}

// ByPincode returns active alerts affecting at least one line in served,
// the lines called at by stops in pincode. An empty pincode returns every active alert.
func ByPincode(alerts []Alert, pincode string, served LineSet, now time.Time) []Alert {
	if pincode == "" {
		return Active(alerts, now)
	}
	return collect(alerts, now, func(a Alert) bool {
		for _, l := range a.AffectedLines {
			if served.Has(l) {
				return true
			}
		}
		return false
	})
}

// collect applies the activity predicate and keep, drops repeated ids, and sorts.
func collect(alerts []Alert, now time.Time, keep func(Alert) bool) []Alert {
	seen := make(map[string]bool, len(alerts))
	result := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if seen[a.ID] || !a.ActiveAt(now) || !keep(a) {
			continue
		}
		seen[a.ID] = true
		result = append(result, a)
	}
	Sort(result)
	return result
}

// Sort orders alerts by severity descending, then start time descending, then id.
func Sort(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		return a.ID < b.ID
	})
}
