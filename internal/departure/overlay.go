package departure

import "time"

// Merge builds the projection for a scheduled departure at instant at,
// overlaying live when it is non-nil. Upcoming times are left for the caller.
func Merge(s Scheduled, live *LiveStatus, at time.Time) Projection {
	p := Projection{
		ID:                 s.ID,
		TransportType:      s.TransportType,
		LineNumber:         s.LineNumber,
		Destination:        s.Destination,
		ScheduledDeparture: at.Format(TimeLayout),
		Platform:           s.Platform,
		Status:             StatusOnTime,
		StopID:             s.StopID,
		StopName:           s.StopName,
		Departs:            at,
	}
	if live == nil {
		return p
	}

	if live.Status != "" {
		p.Status = live.Status
	}
	if live.DelayMinutes > 0 {
		d := live.DelayMinutes
		p.DelayMinutes = &d
	}
	if live.ActualDeparture != nil {
		p.ActualDeparture = live.ActualDeparture.In(at.Location()).Format(TimeLayout)
	}
	return p
}
