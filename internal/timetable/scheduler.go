package timetable

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"livelink/internal/storage"
)

// refreshHour is the local hour of the nightly timetable check.
const refreshHour = 3

// Scheduler manages nightly timetable refreshes from a URL.
type Scheduler struct {
	downloader *Downloader
	importer   *Importer
	db         *storage.DB
	loc        *time.Location
	logger     *slog.Logger

	mu            sync.Mutex
	lastCheckDate string // YYYY-MM-DD of last check, prevents multiple checks per day
}

// NewScheduler creates a Scheduler that runs in the given timezone.
func NewScheduler(downloader *Downloader, db *storage.DB, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		downloader: downloader,
		importer:   NewImporter(db, logger),
		db:         db,
		loc:        loc,
		logger:     logger,
	}
}

// EnsureData downloads and imports the timetable if the database is empty.
// Called on startup.
func (s *Scheduler) EnsureData(ctx context.Context) error {
	if s.db.HasData(ctx) {
		s.logger.Info("timetable already present")
		return nil
	}
	s.logger.Info("no timetable found, performing initial import")
	return s.update(ctx)
}

// CheckAndUpdate imports the timetable if it changed upstream.
// Only checks once per calendar day.
func (s *Scheduler) CheckAndUpdate(ctx context.Context) error {
	s.mu.Lock()
	today := time.Now().In(s.loc).Format("2006-01-02")
	if s.lastCheckDate == today {
		s.mu.Unlock()
		return nil
	}
	s.lastCheckDate = today
	s.mu.Unlock()

	lastModified, _ := s.db.GetMetadata(ctx, "last_modified")
	etag, _ := s.db.GetMetadata(ctx, "etag")

	up, err := s.downloader.Check(ctx, lastModified, etag)
	if err != nil {
		return err
	}
	if !up.Changed {
		return nil
	}
	return s.update(ctx)
}

// StartBackground runs the nightly check. It blocks until the context is cancelled.
func (s *Scheduler) StartBackground(ctx context.Context) {
	s.logger.Info("timetable scheduler started")

	for {
		next := nextRun(time.Now().In(s.loc))
		s.logger.Info("next timetable check scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			if err := s.CheckAndUpdate(ctx); err != nil {
				s.logger.Error("background timetable update failed", "error", err)
			}
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("timetable scheduler stopped")
			return
		}
	}
}

// update performs a full download-parse-import cycle.
func (s *Scheduler) update(ctx context.Context) error {
	archive, err := s.downloader.Download(ctx)
	if err != nil {
		return err
	}
	defer archive.Remove()

	tt, err := Load(archive.Path, s.logger)
	if err != nil {
		return err
	}
	tt.LastModified = archive.LastModified
	tt.ETag = archive.ETag

	return s.importer.Import(ctx, tt)
}

// nextRun returns the next refreshHour:00 strictly after now, in now's location.
func nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), refreshHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
