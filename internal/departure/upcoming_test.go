package departure

import (
	"reflect"
	"testing"
	"time"
)

func TestUpcoming_Spacing(t *testing.T) {
	base := time.Date(2024, 1, 2, 14, 32, 0, 0, time.UTC)

	for _, n := range []int{1, 3, 5} {
		got := Upcoming(base, n, DefaultUpcomingInterval)
		if len(got) != n {
			t.Fatalf("Upcoming(n=%d) returned %d times", n, len(got))
		}
		for k, at := range got {
			want := base.Add(time.Duration(k+1) * DefaultUpcomingInterval)
			if !at.Equal(want) {
				t.Errorf("Upcoming(n=%d)[%d] = %s, want %s", n, k, at.Format("15:04"), want.Format("15:04"))
			}
			if k > 0 && !at.After(got[k-1]) {
				t.Errorf("Upcoming(n=%d) not strictly increasing at %d", n, k)
			}
		}
	}
}

func TestFormatUpcoming(t *testing.T) {
	tests := []struct {
		name string
		base time.Time
		n    int
		want []string
	}{
		{"S4 at 14:32", time.Date(2024, 1, 2, 14, 32, 0, 0, time.UTC), 3, []string{"14:47", "15:02", "15:17"}},
		{"443 at 14:28", time.Date(2024, 1, 2, 14, 28, 0, 0, time.UTC), 3, []string{"14:43", "14:58", "15:13"}},
		{"past midnight", time.Date(2024, 1, 2, 23, 50, 0, 0, time.UTC), 2, []string{"00:05", "00:20"}},
		{"zero count", time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUpcoming(tt.base, tt.n, DefaultUpcomingInterval)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FormatUpcoming() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{"14:32", 14*60 + 32, false},
		{"00:00", 0, false},
		{"23:59:30", 23*60 + 59, false},
		{"7:05", 7*60 + 5, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestClockString(t *testing.T) {
	if got := Clock(7*60 + 5).String(); got != "07:05" {
		t.Errorf("Clock.String() = %q, want %q", got, "07:05")
	}
}
