package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"livelink/internal/alert"
	"livelink/internal/departure"
)

// Alert sources. Timetable imports and live feeds replace only their own alerts.
const (
	SourceTimetable = "timetable"
	SourceFeed      = "feed"
)

// UpsertLiveStatus stores the latest live status for each scheduled departure.
func (db *DB) UpsertLiveStatus(ctx context.Context, statuses []departure.LiveStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO live_status (departure_id, status, delay_minutes, actual_departure, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(departure_id) DO UPDATE SET
			status = excluded.status,
			delay_minutes = excluded.delay_minutes,
			actual_departure = excluded.actual_departure,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare live_status: %w", err)
	}
	defer stmt.Close()

	for _, ls := range statuses {
		if _, err := stmt.ExecContext(ctx, ls.ScheduledID, ls.Status, ls.DelayMinutes,
			nullTime(ls.ActualDeparture), ls.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("upsert live status %s: %w", ls.ScheduledID, err)
		}
	}
	return tx.Commit()
}

// PruneLiveStatus deletes live status rows last updated before cutoff.
func (db *DB) PruneLiveStatus(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM live_status WHERE updated_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune live status: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceFeedAlerts swaps all feed-sourced alerts for the given set in one transaction.
func (db *DB) ReplaceFeedAlerts(ctx context.Context, alerts []alert.Alert) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ReplaceAlerts(ctx, tx, SourceFeed, alerts); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAlerts deletes every alert from source and inserts alerts in its place within tx.
func ReplaceAlerts(ctx context.Context, tx *sql.Tx, source string, alerts []alert.Alert) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM alert_lines WHERE alert_id IN (SELECT alert_id FROM service_alerts WHERE source = ?)`,
		source); err != nil {
		return fmt.Errorf("clear %s alert lines: %w", source, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM service_alerts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clear %s alerts: %w", source, err)
	}

	alertStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO service_alerts
			(alert_id, source, alert_type, title, description, severity, start_time, end_time, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare alerts: %w", err)
	}
	defer alertStmt.Close()

	lineStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO alert_lines (alert_id, line_number) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare alert lines: %w", err)
	}
	defer lineStmt.Close()

	for _, a := range alerts {
		if _, err := alertStmt.ExecContext(ctx, a.ID, source, a.Type, a.Title, a.Description,
			int(a.Severity), a.StartTime.UTC().Format(time.RFC3339), nullTime(a.EndTime), a.IsActive); err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
		for _, line := range a.AffectedLines {
			if _, err := lineStmt.ExecContext(ctx, a.ID, line); err != nil {
				return fmt.Errorf("insert alert line %s/%s: %w", a.ID, line, err)
			}
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
