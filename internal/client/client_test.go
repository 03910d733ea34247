package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func envelopeJSON(t *testing.T, w http.ResponseWriter, status int, data any, message string) {
	t.Helper()
	body := map[string]any{
		"success":   status < 400,
		"timestamp": "2024-01-02T13:00:00Z",
	}
	if data != nil {
		body["data"] = data
	}
	if message != "" && status < 400 {
		body["message"] = message
	} else if message != "" {
		body["error"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func TestDepartures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/v1/departures" {
			t.Errorf("path = %q, want /api/v1/departures", r.URL.Path)
		}
		if got := r.URL.Query().Get("pincode"); got != "71634" {
			t.Errorf("pincode = %q, want 71634", got)
		}
		envelopeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": "dep_2", "lineNumber": "443", "scheduledDeparture": "14:28", "status": "on-time", "nextDepartures": []string{"14:43"}},
			{"id": "dep_1", "lineNumber": "S4", "scheduledDeparture": "14:32", "status": "delayed", "delayMinutes": 5},
		}, "")
	}))
	defer srv.Close()

	c := New(srv.URL+"/", testLogger())
	ctx := context.Background()

	deps, err := c.Departures(ctx, "71634")
	if err != nil {
		t.Fatalf("Departures: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("len = %d, want 2", len(deps))
	}
	if deps[0].ID != "dep_2" || deps[1].ID != "dep_1" {
		t.Errorf("order = %s,%s, want dep_2,dep_1", deps[0].ID, deps[1].ID)
	}
	if deps[1].DelayMinutes == nil || *deps[1].DelayMinutes != 5 {
		t.Errorf("delay = %v, want 5", deps[1].DelayMinutes)
	}
	if deps[0].DelayMinutes != nil {
		t.Errorf("on-time delay = %v, want nil", *deps[0].DelayMinutes)
	}

	// Second call is served from the cache.
	if _, err := c.Departures(ctx, "71634"); err != nil {
		t.Fatalf("Departures (cached): %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestLiveDeparturesNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body struct {
			StopIDs []string `json:"stopIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.StopIDs) != 2 {
			t.Errorf("stopIds = %v, want 2 ids", body.StopIDs)
		}
		envelopeJSON(t, w, http.StatusOK, []map[string]any{}, "")
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	for i := 0; i < 2; i++ {
		deps, err := c.LiveDepartures(context.Background(), []string{"stop_a", "stop_b"})
		if err != nil {
			t.Fatalf("LiveDepartures: %v", err)
		}
		if deps == nil || len(deps) != 0 {
			t.Errorf("deps = %v, want empty", deps)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestAlertsAndStops(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/alerts/line/S4", func(w http.ResponseWriter, r *http.Request) {
		envelopeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": "a1", "type": "disruption", "severity": "high", "affectedLines": []string{"S4"}, "startTime": "2024-01-02T12:00:00Z", "isActive": true},
		}, "")
	})
	mux.HandleFunc("/api/v1/stops/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "haupt bahnhof" {
			t.Errorf("q = %q, want %q", got, "haupt bahnhof")
		}
		envelopeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": "stop_a", "name": "Hauptbahnhof", "stopType": "train", "pincode": "71634", "isActive": true},
		}, "Found 1 stops")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, testLogger())
	ctx := context.Background()

	alerts, err := c.AlertsForLine(ctx, "S4")
	if err != nil {
		t.Fatalf("AlertsForLine: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Severity.String() != "high" {
		t.Errorf("alerts = %+v, want one high alert", alerts)
	}

	stops, err := c.SearchStops(ctx, "haupt bahnhof")
	if err != nil {
		t.Fatalf("SearchStops: %v", err)
	}
	if len(stops) != 1 || stops[0].Name != "Hauptbahnhof" {
		t.Errorf("stops = %+v, want Hauptbahnhof", stops)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"not found", http.StatusNotFound, "Stop not found: x", ErrNotFound},
		{"bad request", http.StatusBadRequest, "pincode is required", ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, "Internal server error", ErrServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				envelopeJSON(t, w, tt.status, nil, tt.message)
			}))
			defer srv.Close()

			_, err := New(srv.URL, testLogger()).DeparturesForStop(context.Background(), "x")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %T, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.message {
				t.Errorf("APIError = %+v, want status %d message %q", apiErr, tt.status, tt.message)
			}
		})
	}
}

func TestErrorNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			envelopeJSON(t, w, http.StatusInternalServerError, nil, "Internal server error")
			return
		}
		envelopeJSON(t, w, http.StatusOK, []map[string]any{}, "")
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	if _, err := c.Stops(context.Background(), "71634"); err == nil {
		t.Fatal("first call should fail")
	}
	if _, err := c.Stops(context.Background(), "71634"); err != nil {
		t.Fatalf("second call: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"UP","timestamp":"2024-01-02T13:00:00Z","service":"LiveLink API"}`)
	}))
	defer srv.Close()

	h, err := New(srv.URL, testLogger()).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "UP" || h.Service != "LiveLink API" {
		t.Errorf("health = %+v", h)
	}
}

func TestAPIErrorIs(t *testing.T) {
	err := &APIError{StatusCode: 503, Endpoint: "/alerts"}
	if !errors.Is(err, ErrServerError) {
		t.Error("503 should match ErrServerError")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("503 should not match ErrNotFound")
	}
	if got := err.Error(); got != "api error 503 (/alerts)" {
		t.Errorf("Error() = %q", got)
	}
}
