package departure

import (
	"testing"
	"time"
)

func sampleRow() Scheduled {
	return Scheduled{
		ID:            "dep_1",
		LineID:        "line_s4",
		LineNumber:    "S4",
		TransportType: "train",
		StopID:        "stop_ludwigsburg_hbf",
		StopName:      "Ludwigsburg Hauptbahnhof",
		Destination:   "Stuttgart Hauptbahnhof",
		Time:          14*60 + 32,
		Platform:      "2",
		Weekdays:      []int{1, 2, 3, 4, 5},
		Active:        true,
	}
}

func TestMerge_NoLiveStatus(t *testing.T) {
	at := time.Date(2024, 1, 2, 14, 32, 0, 0, time.UTC)
	p := Merge(sampleRow(), nil, at)

	if p.Status != StatusOnTime {
		t.Errorf("Status = %q, want %q", p.Status, StatusOnTime)
	}
	if p.DelayMinutes != nil {
		t.Errorf("DelayMinutes = %d, want absent", *p.DelayMinutes)
	}
	if p.ActualDeparture != "" {
		t.Errorf("ActualDeparture = %q, want empty", p.ActualDeparture)
	}
	if p.ScheduledDeparture != "14:32" {
		t.Errorf("ScheduledDeparture = %q, want 14:32", p.ScheduledDeparture)
	}
	if p.LineNumber != "S4" || p.StopName != "Ludwigsburg Hauptbahnhof" || p.Platform != "2" {
		t.Errorf("scheduled fields not copied: %+v", p)
	}
}

func TestMerge_DelayPresence(t *testing.T) {
	at := time.Date(2024, 1, 2, 14, 32, 0, 0, time.UTC)

	tests := []struct {
		name      string
		live      LiveStatus
		wantDelay int // 0 means absent
		status    string
	}{
		{"delayed five", LiveStatus{Status: StatusDelayed, DelayMinutes: 5}, 5, StatusDelayed},
		{"zero delay is absent", LiveStatus{Status: StatusOnTime, DelayMinutes: 0}, 0, StatusOnTime},
		{"negative delay is absent", LiveStatus{Status: StatusOnTime, DelayMinutes: -2}, 0, StatusOnTime},
		{"cancelled keeps status", LiveStatus{Status: StatusCancelled}, 0, StatusCancelled},
		{"blank status defaults", LiveStatus{DelayMinutes: 3}, 3, StatusOnTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := tt.live
			p := Merge(sampleRow(), &live, at)
			if p.Status != tt.status {
				t.Errorf("Status = %q, want %q", p.Status, tt.status)
			}
			switch {
			case tt.wantDelay == 0 && p.DelayMinutes != nil:
				t.Errorf("DelayMinutes = %d, want absent", *p.DelayMinutes)
			case tt.wantDelay > 0 && (p.DelayMinutes == nil || *p.DelayMinutes != tt.wantDelay):
				t.Errorf("DelayMinutes = %v, want %d", p.DelayMinutes, tt.wantDelay)
			}
		})
	}
}

func TestMerge_ActualDeparture(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2024, 1, 2, 14, 32, 0, 0, loc)
	actual := time.Date(2024, 1, 2, 13, 37, 0, 0, time.UTC) // 14:37 CET

	p := Merge(sampleRow(), &LiveStatus{Status: StatusDelayed, DelayMinutes: 5, ActualDeparture: &actual}, at)
	if p.ActualDeparture != "14:37" {
		t.Errorf("ActualDeparture = %q, want 14:37 in the scheduled location", p.ActualDeparture)
	}
}
