package alert

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

var now = time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 2, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func fixtures() []Alert {
	return []Alert{
		{ID: "a1", Severity: SeverityLow, AffectedLines: []string{"S4"}, StartTime: at(9, 0), IsActive: true},
		{ID: "a2", Severity: SeverityHigh, AffectedLines: []string{"S4", "443"}, StartTime: at(8, 0), IsActive: true},
		{ID: "a3", Severity: SeverityHigh, AffectedLines: []string{"S4"}, StartTime: at(10, 0), IsActive: true},
		{ID: "a4", Severity: SeverityMedium, AffectedLines: []string{"42"}, StartTime: at(7, 0), IsActive: true},
		{ID: "expired", Severity: SeverityHigh, AffectedLines: []string{"S4"}, StartTime: at(6, 0), EndTime: ptr(at(13, 59)), IsActive: true},
		{ID: "future", Severity: SeverityHigh, AffectedLines: []string{"S4"}, StartTime: at(15, 0), IsActive: true},
		{ID: "disabled", Severity: SeverityHigh, AffectedLines: []string{"S4"}, StartTime: at(6, 0), IsActive: false},
	}
}

func alertIDs(as []Alert) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestActiveAt(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		want  bool
	}{
		{"open ended", Alert{IsActive: true, StartTime: at(9, 0)}, true},
		{"starts now", Alert{IsActive: true, StartTime: now}, true},
		{"ends now", Alert{IsActive: true, StartTime: at(9, 0), EndTime: ptr(now)}, true},
		{"ended", Alert{IsActive: true, StartTime: at(9, 0), EndTime: ptr(at(13, 0))}, false},
		{"not started", Alert{IsActive: true, StartTime: at(15, 0)}, false},
		{"flag off", Alert{IsActive: false, StartTime: at(9, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.ActiveAt(now); got != tt.want {
				t.Errorf("ActiveAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestByLine(t *testing.T) {
	got := ByLine(fixtures(), "S4", now)
	// high/10:00, high/08:00, low/09:00
	if want := []string{"a3", "a2", "a1"}; !reflect.DeepEqual(alertIDs(got), want) {
		t.Fatalf("ByLine(S4) = %v, want %v", alertIDs(got), want)
	}
	for _, a := range got {
		if !a.Affects("S4") {
			t.Errorf("alert %s does not affect S4", a.ID)
		}
	}
}

func TestByLine_TieBreakByID(t *testing.T) {
	alerts := []Alert{
		{ID: "z", Severity: SeverityMedium, AffectedLines: []string{"1"}, StartTime: at(9, 0), IsActive: true},
		{ID: "b", Severity: SeverityMedium, AffectedLines: []string{"1"}, StartTime: at(9, 0), IsActive: true},
		{ID: "m", Severity: SeverityMedium, AffectedLines: []string{"1"}, StartTime: at(9, 0), IsActive: true},
	}
	got := ByLine(alerts, "1", now)
	if want := []string{"b", "m", "z"}; !reflect.DeepEqual(alertIDs(got), want) {
		t.Errorf("ByLine tie-break = %v, want %v", alertIDs(got), want)
	}
}

func TestByLine_NoMatch(t *testing.T) {
	if got := ByLine(fixtures(), "U1", now); len(got) != 0 {
		t.Errorf("ByLine(U1) = %v, want empty", alertIDs(got))
	}
}

func TestByPincode(t *testing.T) {
	tests := []struct {
		name    string
		pincode string
		served  LineSet
		want    []string
	}{
		{"lines S4 and 443", "71634", NewLineSet("S4", "443"), []string{"a3", "a2", "a1"}},
		{"bus 42 only", "71638", NewLineSet("42"), []string{"a4"}},
		{"no lines served", "99999", NewLineSet(), []string{}},
		{"empty pincode returns all active", "", nil, []string{"a3", "a2", "a4", "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByPincode(fixtures(), tt.pincode, tt.served, now)
			if !reflect.DeepEqual(alertIDs(got), tt.want) {
				t.Errorf("ByPincode(%q) = %v, want %v", tt.pincode, alertIDs(got), tt.want)
			}
		})
	}
}

func TestByPincode_Deduplicates(t *testing.T) {
	dup := Alert{ID: "dup", Severity: SeverityHigh, AffectedLines: []string{"S4", "443", "42"}, StartTime: at(9, 0), IsActive: true}
	alerts := []Alert{dup, dup}

	got := ByPincode(alerts, "71634", NewLineSet("S4", "443", "42"), now)
	if len(got) != 1 {
		t.Errorf("ByPincode returned %d alerts, want 1", len(got))
	}
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(Alert{ID: "x", Severity: SeverityHigh})
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["severity"] != "high" {
		t.Errorf("severity JSON = %v, want \"high\"", out["severity"])
	}
	if _, ok := out["endTime"]; ok {
		t.Error("endTime should be omitted when nil")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"low", SeverityLow},
		{"Medium", SeverityMedium},
		{" HIGH ", SeverityHigh},
		{"critical", SeverityUnknown},
		{"", SeverityUnknown},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.input); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
