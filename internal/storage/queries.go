package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/stop"
)

// GetMetadata retrieves a value from the feed_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM feed_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the feed_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// HasData returns true if a timetable has been imported.
func (db *DB) HasData(ctx context.Context) bool {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scheduled_departures`).Scan(&n)
	return err == nil && n > 0
}

const stopColumns = `s.stop_id, s.name, s.stop_type, s.latitude, s.longitude, s.pincode, s.address, s.active`

func scanStop(sc interface{ Scan(...any) error }) (stop.Stop, error) {
	var s stop.Stop
	var lat, lon sql.NullFloat64
	if err := sc.Scan(&s.ID, &s.Name, &s.StopType, &lat, &lon, &s.Pincode, &s.Address, &s.IsActive); err != nil {
		return s, err
	}
	if lat.Valid && lon.Valid {
		s.Latitude = &lat.Float64
		s.Longitude = &lon.Float64
	}
	return s, nil
}

func (r *Reader) queryStops(ctx context.Context, what, query string, args ...any) ([]stop.Stop, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", what, err)
	}
	defer rows.Close()

	var stops []stop.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// StopByID returns a stop regardless of its active flag. ok is false if it doesn't exist.
func (r *Reader) StopByID(ctx context.Context, id string) (s stop.Stop, ok bool, err error) {
	s, err = scanStop(r.q.QueryRowContext(ctx,
		`SELECT `+stopColumns+` FROM transport_stops AS s WHERE s.stop_id = ?`, id))
	if err == sql.ErrNoRows {
		return stop.Stop{}, false, nil
	}
	if err != nil {
		return stop.Stop{}, false, fmt.Errorf("stop query: %w", err)
	}
	return s, true, nil
}

// StopsByPincode returns active stops in a pincode ordered by name.
func (r *Reader) StopsByPincode(ctx context.Context, pincode string) ([]stop.Stop, error) {
	return r.queryStops(ctx, "stops by pincode", `
		SELECT `+stopColumns+`
		FROM transport_stops AS s
		WHERE s.pincode = ? AND s.active = 1
		ORDER BY s.name COLLATE NOCASE, s.stop_id`, pincode)
}

// StopCandidates returns stops whose name or address contains query, case-insensitively.
// Ranking is left to the caller.
func (r *Reader) StopCandidates(ctx context.Context, query string) ([]stop.Stop, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	return r.queryStops(ctx, "stop search", `
		SELECT `+stopColumns+`
		FROM transport_stops AS s
		WHERE s.active = 1
		  AND (ulower(s.name) LIKE ? ESCAPE '\' OR ulower(s.address) LIKE ? ESCAPE '\')`,
		pattern, pattern)
}

const scheduledColumns = `
	d.departure_id, l.line_id, l.line_number, l.transport_type,
	s.stop_id, s.name, d.destination, d.departure_time, d.platform, d.weekdays, d.active
	FROM scheduled_departures AS d
	JOIN transport_lines AS l ON l.line_id = d.line_id
	JOIN transport_stops AS s ON s.stop_id = d.stop_id`

// ScheduledForPincode returns timetable rows at active stops in a pincode on active lines.
func (r *Reader) ScheduledForPincode(ctx context.Context, pincode string) ([]departure.Scheduled, error) {
	return r.queryScheduled(ctx, `
		SELECT `+scheduledColumns+`
		WHERE s.pincode = ? AND s.active = 1 AND l.active = 1`, pincode)
}

// ScheduledForStops returns timetable rows at the given active stops on active lines.
func (r *Reader) ScheduledForStops(ctx context.Context, stopIDs []string) ([]departure.Scheduled, error) {
	if len(stopIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(stopIDs)
	return r.queryScheduled(ctx, `
		SELECT `+scheduledColumns+`
		WHERE s.stop_id IN (`+in+`) AND s.active = 1 AND l.active = 1`, args...)
}

func (r *Reader) queryScheduled(ctx context.Context, query string, args ...any) ([]departure.Scheduled, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scheduled departures query: %w", err)
	}
	defer rows.Close()

	var out []departure.Scheduled
	for rows.Next() {
		var d departure.Scheduled
		var clock, weekdays string
		if err := rows.Scan(&d.ID, &d.LineID, &d.LineNumber, &d.TransportType,
			&d.StopID, &d.StopName, &d.Destination, &clock, &d.Platform, &weekdays, &d.Active); err != nil {
			return nil, fmt.Errorf("scan departure: %w", err)
		}
		if d.Time, err = departure.ParseClock(clock); err != nil {
			return nil, fmt.Errorf("departure %s: %w", d.ID, err)
		}
		// Malformed tokens are dropped; the remaining days still apply.
		d.Weekdays, _ = departure.ParseWeekdays(weekdays)
		out = append(out, d)
	}
	return out, rows.Err()
}

// LiveStatuses returns the stored live status for each of the given scheduled ids that has one.
func (r *Reader) LiveStatuses(ctx context.Context, ids []string) (map[string]departure.LiveStatus, error) {
	out := make(map[string]departure.LiveStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	in, args := inClause(ids)
	rows, err := r.q.QueryContext(ctx, `
		SELECT departure_id, status, delay_minutes, actual_departure, updated_at
		FROM live_status
		WHERE departure_id IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("live status query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ls departure.LiveStatus
		var actual sql.NullString
		var updated string
		if err := rows.Scan(&ls.ScheduledID, &ls.Status, &ls.DelayMinutes, &actual, &updated); err != nil {
			return nil, fmt.Errorf("scan live status: %w", err)
		}
		if actual.Valid {
			if t, err := time.Parse(time.RFC3339, actual.String); err == nil {
				ls.ActualDeparture = &t
			}
		}
		ls.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out[ls.ScheduledID] = ls
	}
	return out, rows.Err()
}

// Alerts returns every stored alert with its affected lines. Activity is
// evaluated by the caller at read time.
func (r *Reader) Alerts(ctx context.Context) ([]alert.Alert, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT a.alert_id, a.alert_type, a.title, a.description, a.severity,
		       a.start_time, a.end_time, a.active, al.line_number
		FROM service_alerts AS a
		LEFT JOIN alert_lines AS al ON al.alert_id = a.alert_id
		ORDER BY a.alert_id, al.line_number`)
	if err != nil {
		return nil, fmt.Errorf("alerts query: %w", err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var a alert.Alert
		var start string
		var end, line sql.NullString
		if err := rows.Scan(&a.ID, &a.Type, &a.Title, &a.Description, &a.Severity,
			&start, &end, &a.IsActive, &line); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if n := len(alerts); n > 0 && alerts[n-1].ID == a.ID {
			if line.Valid {
				alerts[n-1].AffectedLines = append(alerts[n-1].AffectedLines, line.String)
			}
			continue
		}
		if a.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("alert %s start: %w", a.ID, err)
		}
		if end.Valid {
			t, err := time.Parse(time.RFC3339, end.String)
			if err != nil {
				return nil, fmt.Errorf("alert %s end: %w", a.ID, err)
			}
			a.EndTime = &t
		}
		a.AffectedLines = []string{}
		if line.Valid {
			a.AffectedLines = append(a.AffectedLines, line.String)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// LinesForPincode returns the numbers of active lines calling at active stops in a pincode.
func (r *Reader) LinesForPincode(ctx context.Context, pincode string) (alert.LineSet, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT l.line_number
		FROM scheduled_departures AS d
		JOIN transport_lines AS l ON l.line_id = d.line_id
		JOIN transport_stops AS s ON s.stop_id = d.stop_id
		WHERE s.pincode = ? AND s.active = 1 AND l.active = 1`, pincode)
	if err != nil {
		return nil, fmt.Errorf("lines for pincode query: %w", err)
	}
	defer rows.Close()

	lines := alert.NewLineSet()
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines[n] = struct{}{}
	}
	return lines, rows.Err()
}

// inClause builds "?,?,?" and matching arguments for an IN list.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(values)), ","), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
