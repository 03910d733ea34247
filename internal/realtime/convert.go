package realtime

import (
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"livelink/internal/alert"
	"livelink/internal/departure"
)

// LiveStatuses converts trip updates into live statuses. Trip ids are
// scheduled departure ids. Entities without a trip id are skipped.
func LiveStatuses(feed *gtfs.FeedMessage, now time.Time) []departure.LiveStatus {
	updated := now
	if ts := feed.GetHeader().GetTimestamp(); ts > 0 {
		updated = time.Unix(int64(ts), 0)
	}

	var out []departure.LiveStatus
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		id := tu.GetTrip().GetTripId()
		if tu == nil || id == "" {
			continue
		}

		ls := departure.LiveStatus{
			ScheduledID: id,
			Status:      departure.StatusOnTime,
			UpdatedAt:   updated,
		}
		if ts := tu.GetTimestamp(); ts > 0 {
			ls.UpdatedAt = time.Unix(int64(ts), 0)
		}

		if tu.GetTrip().GetScheduleRelationship() == gtfs.TripDescriptor_CANCELED {
			ls.Status = departure.StatusCancelled
			out = append(out, ls)
			continue
		}

		if ev := firstEvent(tu); ev != nil {
			ls.DelayMinutes = delayMinutes(ev.GetDelay())
			if ev.Time != nil {
				t := time.Unix(ev.GetTime(), 0)
				ls.ActualDeparture = &t
			}
		}
		if ls.DelayMinutes > 0 {
			ls.Status = departure.StatusDelayed
		}
		out = append(out, ls)
	}
	return out
}

// firstEvent returns the departure event of the first stop time update,
// falling back to its arrival.
func firstEvent(tu *gtfs.TripUpdate) *gtfs.TripUpdate_StopTimeEvent {
	for _, stu := range tu.GetStopTimeUpdate() {
		if ev := stu.GetDeparture(); ev != nil {
			return ev
		}
		if ev := stu.GetArrival(); ev != nil {
			return ev
		}
	}
	return nil
}

// delayMinutes rounds a delay in seconds to whole minutes. Early running counts as zero.
func delayMinutes(seconds int32) int {
	if seconds <= 0 {
		return 0
	}
	return int((seconds + 30) / 60)
}

// Alerts converts feed alerts. The first active period supplies start and end;
// alerts without one start at now and stay open.
func Alerts(feed *gtfs.FeedMessage, now time.Time) []alert.Alert {
	var out []alert.Alert
	for _, entity := range feed.GetEntity() {
		a := entity.GetAlert()
		if a == nil || entity.GetId() == "" {
			continue
		}

		kind, severity := classify(a.GetEffect().String())
		if lvl := severityLevel(a.GetSeverityLevel().String()); lvl != alert.SeverityUnknown {
			severity = lvl
		}

		out = append(out, alert.Alert{
			ID:            entity.GetId(),
			Type:          kind,
			Title:         getTranslation(a.GetHeaderText()),
			Description:   getTranslation(a.GetDescriptionText()),
			Severity:      severity,
			AffectedLines: routeIDs(a),
			StartTime:     startOf(a, now),
			EndTime:       endOf(a),
			IsActive:      true,
		})
	}
	return out
}

func startOf(a *gtfs.Alert, now time.Time) time.Time {
	if p := a.GetActivePeriod(); len(p) > 0 && p[0].GetStart() > 0 {
		return time.Unix(int64(p[0].GetStart()), 0)
	}
	return now
}

func endOf(a *gtfs.Alert) *time.Time {
	if p := a.GetActivePeriod(); len(p) > 0 && p[0].GetEnd() > 0 {
		t := time.Unix(int64(p[0].GetEnd()), 0)
		return &t
	}
	return nil
}

// routeIDs collects informed route ids, deduplicated, in feed order.
func routeIDs(a *gtfs.Alert) []string {
	seen := make(map[string]bool)
	lines := []string{}
	for _, ie := range a.GetInformedEntity() {
		if rid := ie.GetRouteId(); rid != "" && !seen[rid] {
			lines = append(lines, rid)
			seen[rid] = true
		}
	}
	return lines
}

// classify maps a GTFS-RT effect to an alert type and a default severity.
func classify(effect string) (string, alert.Severity) {
	switch effect {
	case "NO_SERVICE":
		return alert.TypeDisruption, alert.SeverityHigh
	case "REDUCED_SERVICE", "SIGNIFICANT_DELAYS":
		return alert.TypeDisruption, alert.SeverityMedium
	case "DETOUR", "MODIFIED_SERVICE", "STOP_MOVED":
		return alert.TypeWarning, alert.SeverityMedium
	case "ACCESSIBILITY_ISSUE":
		return alert.TypeWarning, alert.SeverityLow
	default:
		return alert.TypeInfo, alert.SeverityLow
	}
}

// severityLevel maps the optional GTFS-RT severity_level field.
func severityLevel(level string) alert.Severity {
	switch level {
	case "INFO":
		return alert.SeverityLow
	case "WARNING":
		return alert.SeverityMedium
	case "SEVERE":
		return alert.SeverityHigh
	default:
		return alert.SeverityUnknown
	}
}

func getTranslation(ts *gtfs.TranslatedString) string {
	for _, t := range ts.GetTranslation() {
		if text := t.GetText(); text != "" {
			return text
		}
	}
	return ""
}
