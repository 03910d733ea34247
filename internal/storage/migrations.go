package storage

import "fmt"

// migrate creates the schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Lines
	`CREATE TABLE IF NOT EXISTS transport_lines (
		line_id        TEXT PRIMARY KEY,
		line_number    TEXT NOT NULL,
		transport_type TEXT NOT NULL DEFAULT 'bus',
		name           TEXT NOT NULL DEFAULT '',
		active         INTEGER NOT NULL DEFAULT 1
	)`,

	// Stops
	`CREATE TABLE IF NOT EXISTS transport_stops (
		stop_id   TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		stop_type TEXT NOT NULL DEFAULT 'bus',
		latitude  REAL,
		longitude REAL,
		pincode   TEXT NOT NULL DEFAULT '',
		address   TEXT NOT NULL DEFAULT '',
		active    INTEGER NOT NULL DEFAULT 1
	)`,

	// Scheduled departures. weekdays holds ISO day numbers, e.g. "1,2,3,4,5".
	`CREATE TABLE IF NOT EXISTS scheduled_departures (
		departure_id   TEXT PRIMARY KEY,
		line_id        TEXT NOT NULL REFERENCES transport_lines(line_id),
		stop_id        TEXT NOT NULL REFERENCES transport_stops(stop_id),
		destination    TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		platform       TEXT NOT NULL DEFAULT '',
		weekdays       TEXT NOT NULL DEFAULT '',
		active         INTEGER NOT NULL DEFAULT 1
	)`,

	// Live status keyed by scheduled departure id. No foreign key: feeds may
	// reference trips the timetable doesn't know, and reimports must not cascade.
	`CREATE TABLE IF NOT EXISTS live_status (
		departure_id     TEXT PRIMARY KEY,
		status           TEXT NOT NULL,
		delay_minutes    INTEGER NOT NULL DEFAULT 0,
		actual_departure TEXT,
		updated_at       TEXT NOT NULL
	)`,

	// Service alerts. source is 'timetable' or 'feed'.
	`CREATE TABLE IF NOT EXISTS service_alerts (
		alert_id    TEXT PRIMARY KEY,
		source      TEXT NOT NULL DEFAULT 'timetable',
		alert_type  TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		severity    INTEGER NOT NULL DEFAULT 1,
		start_time  TEXT NOT NULL,
		end_time    TEXT,
		active      INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS alert_lines (
		alert_id    TEXT NOT NULL REFERENCES service_alerts(alert_id) ON DELETE CASCADE,
		line_number TEXT NOT NULL,
		PRIMARY KEY (alert_id, line_number)
	)`,

	// Feed metadata (last_modified, etag, imported_at, etc.)
	`CREATE TABLE IF NOT EXISTS feed_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// Indexes for common query patterns
	`CREATE INDEX IF NOT EXISTS idx_stops_pincode ON transport_stops(pincode)`,
	`CREATE INDEX IF NOT EXISTS idx_departures_stop ON scheduled_departures(stop_id)`,
	`CREATE INDEX IF NOT EXISTS idx_departures_line ON scheduled_departures(line_id)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_lines_line ON alert_lines(line_number)`,
}
