package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/service"
)

func render(t *testing.T, data BoardData) string {
	t.Helper()
	var sb strings.Builder
	if err := Board(data).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func TestBoard_Empty(t *testing.T) {
	html := render(t, BoardData{Page: Page{Title: "Departures", Version: "abc123"}})
	for _, want := range []string{`<form class="lookup"`, `board.css?v=abc123`, `<title>Departures · LiveLink</title>`} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "<table") {
		t.Error("empty board should not render a table")
	}
}

func TestBoard_Departures(t *testing.T) {
	five := 5
	b := &service.Board{
		Pincode: "71634",
		Departures: []departure.Projection{
			{ID: "dep_1", TransportType: "train", LineNumber: "S4", Destination: "Stuttgart <Hbf>",
				ScheduledDeparture: "14:32", ActualDeparture: "14:37", Platform: "2", Status: departure.StatusDelayed,
				DelayMinutes: &five, NextDepartures: []string{"14:47", "15:02", "15:17"}, StopName: "Bahnhof"},
			{ID: "dep_2", TransportType: "bus", LineNumber: "443", Destination: "Sindelfingen",
				ScheduledDeparture: "14:40", Status: departure.StatusCancelled, StopName: "Marktplatz"},
		},
		Alerts: []alert.Alert{
			{ID: "a1", Type: alert.TypeDisruption, Severity: alert.SeverityHigh, Title: "Sperrung",
				AffectedLines: []string{"S4"}},
		},
		GeneratedAt: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC),
	}
	html := render(t, BoardData{Page: Page{Title: "Departures for 71634"}, Board: b})

	tests := []string{
		`value="71634"`,
		`Stuttgart &lt;Hbf&gt;`,
		`<span class="actual">14:37</span>`,
		`+5 min`,
		`Cancelled`,
		`14:47 15:02 15:17`,
		`alert-disruption severity-high`,
		`Updated 14:00`,
	}
	for _, want := range tests {
		if !strings.Contains(html, want) {
			t.Errorf("board missing %q", want)
		}
	}
	if strings.Contains(html, "Stuttgart <Hbf>") {
		t.Error("destination was not escaped")
	}
}

func TestBoardContent(t *testing.T) {
	b := &service.Board{
		Pincode:     "71634",
		GeneratedAt: time.Date(2024, 1, 2, 14, 5, 0, 0, time.UTC),
		Stops:       nil,
	}
	var sb strings.Builder
	if err := BoardContent(b).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, `class="empty"`) || !strings.Contains(html, "Updated 14:05") {
		t.Errorf("content = %q", html)
	}
	if strings.Contains(html, "<html") || strings.Contains(html, "board-content") {
		t.Error("content fragment should not include the page layout or wrapper")
	}

	page := render(t, BoardData{Page: Page{Title: "Departures", Version: "v1"}, Board: b})
	for _, want := range []string{`data-stream="/board/stream?pincode=71634"`, `board.js?v=v1`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
