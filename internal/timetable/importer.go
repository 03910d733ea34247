package timetable

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/stop"
	"livelink/internal/storage"
)

// Importer loads a parsed timetable into SQLite.
type Importer struct {
	db     *storage.DB
	logger *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(db *storage.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ImportPath parses the zip or directory at path and imports it.
func (imp *Importer) ImportPath(ctx context.Context, path string) error {
	tt, err := Load(path, imp.logger)
	if err != nil {
		return err
	}
	return imp.Import(ctx, tt)
}

// Import replaces lines, stops, departures and timetable alerts in a single
// transaction. Live status and feed alerts are left alone.
func (imp *Importer) Import(ctx context.Context, tt *Timetable) error {
	start := time.Now()

	tx, err := imp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range []string{"scheduled_departures", "transport_stops", "transport_lines"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	if err := imp.importLines(ctx, tx, tt.Lines); err != nil {
		return err
	}
	if err := imp.importStops(ctx, tx, tt.Stops); err != nil {
		return err
	}
	if err := imp.importDepartures(ctx, tx, tt.Departures); err != nil {
		return err
	}

	alerts := make([]alert.Alert, 0, len(tt.Alerts))
	for _, rec := range tt.Alerts {
		a, err := rec.toAlert()
		if err != nil {
			return fmt.Errorf("alert %s: %w", rec.AlertID, err)
		}
		alerts = append(alerts, a)
	}
	if err := storage.ReplaceAlerts(ctx, tx, storage.SourceTimetable, alerts); err != nil {
		return err
	}

	meta := map[string]string{
		"imported_at":   time.Now().UTC().Format(time.RFC3339),
		"last_modified": tt.LastModified,
		"etag":          tt.ETag,
	}
	for k, v := range meta {
		if v == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	imp.logger.Info("timetable import complete",
		"duration", time.Since(start).Round(time.Millisecond),
		"lines", len(tt.Lines),
		"stops", len(tt.Stops),
		"departures", len(tt.Departures),
		"alerts", len(alerts),
	)
	return nil
}

func (imp *Importer) importLines(ctx context.Context, tx *sql.Tx, lines []LineRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transport_lines (line_id, line_number, transport_type, name, active) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare lines: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if l.LineID == "" || l.LineNumber == "" {
			return fmt.Errorf("line %q: id and number are required", l.LineID)
		}
		active, err := parseActive(l.Active)
		if err != nil {
			return fmt.Errorf("line %s: %w", l.LineID, err)
		}
		kind := strings.ToLower(l.TransportType)
		if kind == "" {
			kind = stop.TypeBus
		}
		if _, err := stmt.ExecContext(ctx, l.LineID, l.LineNumber, kind, l.Name, active); err != nil {
			return fmt.Errorf("insert line %s: %w", l.LineID, err)
		}
	}
	imp.logger.Info("imported lines", "count", len(lines))
	return nil
}

func (imp *Importer) importStops(ctx context.Context, tx *sql.Tx, stops []StopRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transport_stops (stop_id, name, stop_type, latitude, longitude, pincode, address, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stops: %w", err)
	}
	defer stmt.Close()

	for _, s := range stops {
		if s.StopID == "" || s.Name == "" {
			return fmt.Errorf("stop %q: id and name are required", s.StopID)
		}
		active, err := parseActive(s.Active)
		if err != nil {
			return fmt.Errorf("stop %s: %w", s.StopID, err)
		}
		kind := strings.ToLower(s.StopType)
		switch kind {
		case stop.TypeBus, stop.TypeTrain, stop.TypeTram, stop.TypeMixed:
		case "":
			kind = stop.TypeBus
		default:
			return fmt.Errorf("stop %s: unknown stop type %q", s.StopID, s.StopType)
		}
		if _, err := stmt.ExecContext(ctx, s.StopID, s.Name, kind,
			nullFloat(s.Latitude), nullFloat(s.Longitude), s.Pincode, s.Address, active); err != nil {
			return fmt.Errorf("insert stop %s: %w", s.StopID, err)
		}
	}
	imp.logger.Info("imported stops", "count", len(stops))
	return nil
}

func (imp *Importer) importDepartures(ctx context.Context, tx *sql.Tx, deps []DepartureRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scheduled_departures (departure_id, line_id, stop_id, destination,
		 departure_time, platform, weekdays, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare departures: %w", err)
	}
	defer stmt.Close()

	for i, d := range deps {
		clock, err := departure.ParseClock(d.DepartureTime)
		if err != nil {
			return fmt.Errorf("departure row %d (%s): %w", i+1, d.DepartureID, err)
		}
		days, err := departure.ParseWeekdays(d.Weekdays)
		if err != nil {
			return fmt.Errorf("departure row %d (%s): %w", i+1, d.DepartureID, err)
		}
		active, err := parseActive(d.Active)
		if err != nil {
			return fmt.Errorf("departure row %d (%s): %w", i+1, d.DepartureID, err)
		}
		if _, err := stmt.ExecContext(ctx, d.DepartureID, d.LineID, d.StopID, d.Destination,
			clock.String(), d.Platform, departure.FormatWeekdays(days), active); err != nil {
			return fmt.Errorf("insert departure row %d (%s): %w", i+1, d.DepartureID, err)
		}
	}
	imp.logger.Info("imported departures", "count", len(deps))
	return nil
}

func (rec AlertRecord) toAlert() (alert.Alert, error) {
	a := alert.Alert{
		ID:          rec.AlertID,
		Type:        strings.ToLower(rec.AlertType),
		Title:       rec.Title,
		Description: rec.Description,
		Severity:    alert.ParseSeverity(rec.Severity),
	}
	var err error
	if a.IsActive, err = parseActive(rec.Active); err != nil {
		return a, err
	}
	switch a.Type {
	case alert.TypeWarning, alert.TypeInfo, alert.TypeDisruption:
	default:
		return a, fmt.Errorf("unknown alert type %q", rec.AlertType)
	}
	if a.Severity == alert.SeverityUnknown {
		return a, fmt.Errorf("unknown severity %q", rec.Severity)
	}

	if a.StartTime, err = time.Parse(time.RFC3339, rec.StartTime); err != nil {
		return a, fmt.Errorf("start time: %w", err)
	}
	if rec.EndTime != "" {
		end, err := time.Parse(time.RFC3339, rec.EndTime)
		if err != nil {
			return a, fmt.Errorf("end time: %w", err)
		}
		a.EndTime = &end
	}

	a.AffectedLines = strings.FieldsFunc(rec.Lines, func(r rune) bool {
		return r == '|' || r == ';' || r == ' '
	})
	return a, nil
}

// parseActive reads an active column. Empty means active; anything that is
// not a boolean ("1", "true", "0", "false", ...) is rejected.
func parseActive(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false, fmt.Errorf("invalid active flag %q", s)
	}
	return b, nil
}

func nullFloat(s string) sql.NullFloat64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
