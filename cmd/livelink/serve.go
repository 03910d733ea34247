package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"livelink/internal/config"
	"livelink/internal/departure"
	"livelink/internal/realtime"
	"livelink/internal/server"
	"livelink/internal/service"
	"livelink/internal/storage"
	"livelink/internal/timetable"
	"livelink/web"
)

var (
	flagPort int
	flagDB   string
)

func init() {
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "HTTP server port (overrides config)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	importCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and departure board",
	Long: `Run the HTTP API and departure board.

On startup the timetable is provisioned: downloaded from timetableURL when
configured (and refreshed nightly at 03:00), otherwise imported from
timetableDir if the database is empty. When tripUpdatesURL or alertsURL is
set, the GTFS-Realtime feeds are polled every pollInterval.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a timetable zip or directory into the database",
	Long: `Import a timetable from a zip archive or a directory containing
lines.csv, stops.csv, departures.csv and optionally alerts.csv.

The import replaces the previous timetable in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDB
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := provisionTimetable(ctx, cfg, db, logger); err != nil {
		// The API still answers from whatever data is already stored.
		logger.Error("timetable provisioning failed", "error", err)
	}

	if cfg.TripUpdatesURL != "" || cfg.AlertsURL != "" {
		fetcher := realtime.NewFetcher(cfg.TripUpdatesURL, cfg.AlertsURL, cfg.PollInterval, db, logger)
		go fetcher.Start(ctx)
	} else {
		logger.Info("no realtime feeds configured, serving timetable only")
	}

	svc := service.New(service.NewDBStore(db), service.Options{
		Engine: departure.Engine{
			Window:           cfg.LookAhead,
			UpcomingCount:    cfg.UpcomingCount,
			UpcomingInterval: cfg.UpcomingInterval,
		},
		SearchLimit: cfg.SearchLimit,
		Location:    cfg.Location(),
	}, logger)

	static, err := fs.Sub(web.StaticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}

	return server.New(cfg, svc, static, logger).Run(ctx)
}

func provisionTimetable(ctx context.Context, cfg *config.Config, db *storage.DB, logger *slog.Logger) error {
	if cfg.TimetableURL != "" {
		downloader := timetable.NewDownloader(cfg.TimetableURL, cfg.TimetableDir, logger)
		scheduler := timetable.NewScheduler(downloader, db, cfg.Location(), logger)
		go scheduler.StartBackground(ctx)
		if err := scheduler.EnsureData(ctx); err != nil {
			return err
		}
		go func() {
			if err := scheduler.CheckAndUpdate(ctx); err != nil {
				logger.Error("daily timetable check failed", "error", err)
			}
		}()
		return nil
	}

	if db.HasData(ctx) {
		return nil
	}
	if _, err := os.Stat(cfg.TimetableDir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no timetable configured and database is empty", "dir", cfg.TimetableDir)
		return nil
	}
	return timetable.NewImporter(db, logger).ImportPath(ctx, cfg.TimetableDir)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDB
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := timetable.NewImporter(db, logger).ImportPath(ctx, args[0]); err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	logger.Info("timetable import complete", "path", args[0])
	return nil
}
