package departure

import (
	"reflect"
	"testing"
	"time"
)

var everyDay = []int{1, 2, 3, 4, 5, 6, 7}

func TestProject_PincodeScenario(t *testing.T) {
	now := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
	rows := []Scheduled{
		{
			ID: "dep_1", LineNumber: "S4", TransportType: "train", Destination: "Stuttgart Hauptbahnhof",
			StopID: "stop_ludwigsburg_hbf", StopName: "Ludwigsburg Hauptbahnhof",
			Time: 14*60 + 32, Platform: "2", Weekdays: everyDay, Active: true,
		},
		{
			ID: "dep_2", LineNumber: "443", TransportType: "bus", Destination: "Schlossstraße",
			StopID: "stop_arsenalplatz", StopName: "Arsenalplatz",
			Time: 14*60 + 28, Weekdays: everyDay, Active: true,
		},
	}
	live := map[string]LiveStatus{
		"dep_1": {ScheduledID: "dep_1", Status: StatusDelayed, DelayMinutes: 5},
	}

	got := Engine{}.Project(rows, live, now)
	if len(got) != 2 {
		t.Fatalf("Project returned %d departures, want 2", len(got))
	}

	byLine := map[string]Projection{}
	for _, p := range got {
		byLine[p.LineNumber] = p
	}

	s4 := byLine["S4"]
	if s4.Status != StatusDelayed || s4.DelayMinutes == nil || *s4.DelayMinutes != 5 {
		t.Errorf("S4 = status %q delay %v, want delayed/5", s4.Status, s4.DelayMinutes)
	}
	if want := []string{"14:47", "15:02", "15:17"}; !reflect.DeepEqual(s4.NextDepartures, want) {
		t.Errorf("S4 next = %v, want %v", s4.NextDepartures, want)
	}

	bus := byLine["443"]
	if bus.Status != StatusOnTime || bus.DelayMinutes != nil {
		t.Errorf("443 = status %q delay %v, want on-time/absent", bus.Status, bus.DelayMinutes)
	}
	if want := []string{"14:43", "14:58", "15:13"}; !reflect.DeepEqual(bus.NextDepartures, want) {
		t.Errorf("443 next = %v, want %v", bus.NextDepartures, want)
	}

	// Ordered by scheduled instant.
	if got[0].ID != "dep_2" || got[1].ID != "dep_1" {
		t.Errorf("order = [%s %s], want [dep_2 dep_1]", got[0].ID, got[1].ID)
	}
}

func TestProject_Filters(t *testing.T) {
	tuesday := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
	rows := []Scheduled{
		{ID: "past", Time: 13*60 + 59, Weekdays: everyDay, Active: true},
		{ID: "weekend", Time: 14*60 + 30, Weekdays: []int{Saturday, Sunday}, Active: true},
		{ID: "inactive", Time: 14*60 + 30, Weekdays: everyDay, Active: false},
		{ID: "too-late", Time: 16*60 + 1, Weekdays: everyDay, Active: true},
		{ID: "no-days", Time: 14*60 + 30, Active: true},
		{ID: "keep", Time: 16 * 60, Weekdays: everyDay, Active: true},
	}

	got := Engine{}.Project(rows, nil, tuesday)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("Project = %v, want only [keep]", ids(got))
	}
}

func TestProject_WrapsPastMidnight(t *testing.T) {
	// Tuesday 23:30; window runs to Wednesday 01:30.
	now := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	rows := []Scheduled{
		{ID: "late", Time: 23*60 + 45, Weekdays: []int{Tuesday}, Active: true},
		{ID: "early-wed", Time: 0*60 + 15, Weekdays: []int{Wednesday}, Active: true},
		{ID: "early-tue-only", Time: 0*60 + 20, Weekdays: []int{Tuesday}, Active: true},
		{ID: "beyond", Time: 1*60 + 45, Weekdays: everyDay, Active: true},
	}

	got := Engine{}.Project(rows, nil, now)
	if want := []string{"late", "early-wed"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Project = %v, want %v", ids(got), want)
	}
	if !got[1].Departs.Equal(time.Date(2024, 1, 3, 0, 15, 0, 0, time.UTC)) {
		t.Errorf("early-wed departs %s, want next day 00:15", got[1].Departs)
	}
}

func TestProject_CustomEngine(t *testing.T) {
	now := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
	rows := []Scheduled{
		{ID: "a", Time: 14*60 + 50, Weekdays: everyDay, Active: true},
	}
	e := Engine{Window: 30 * time.Minute, UpcomingCount: 2, UpcomingInterval: 10 * time.Minute}
	if got := e.Project(rows, nil, now); len(got) != 0 {
		t.Fatalf("30m window should exclude 14:50, got %v", ids(got))
	}

	e.Window = time.Hour
	got := e.Project(rows, nil, now)
	if len(got) != 1 {
		t.Fatalf("1h window should include 14:50, got %v", ids(got))
	}
	if want := []string{"15:00", "15:10"}; !reflect.DeepEqual(got[0].NextDepartures, want) {
		t.Errorf("next = %v, want %v", got[0].NextDepartures, want)
	}
}

func TestProject_Empty(t *testing.T) {
	got := Engine{}.Project(nil, nil, time.Now())
	if got == nil || len(got) != 0 {
		t.Errorf("Project(nil) = %v, want empty non-nil slice", got)
	}
}

func ids(ps []Projection) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
