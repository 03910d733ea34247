package departure

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Stored weekday numbers. Timetable rows use ISO-8601 numbering.
const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
	Sunday    = 7
)

// ISOWeekday returns the stored weekday number for t.
func ISOWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return int(t.Weekday())
}

// RunsOn reports whether a departure with the given weekday set runs on date.
// An empty set never matches.
func RunsOn(days []int, date time.Time) bool {
	wd := ISOWeekday(date)
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

// ParseWeekdays reads a stored weekday set such as "1,2,3,4,5" or "12345".
// Separators may be commas, semicolons, pipes or spaces. Valid days are
// returned even when the error reports a bad token.
func ParseWeekdays(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == ' '
	})
	if len(fields) == 1 && len(fields[0]) > 1 {
		fields = strings.Split(fields[0], "")
	}

	days := make([]int, 0, len(fields))
	var firstErr error
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err == nil && (d < Monday || d > Sunday) {
			err = fmt.Errorf("out of range")
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("weekday %q: %w", f, err)
			}
			continue
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	return days, firstErr
}

// FormatWeekdays renders a weekday set in its stored form.
func FormatWeekdays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
