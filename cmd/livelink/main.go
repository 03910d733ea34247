package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"livelink/internal/config"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "livelink",
	Short: "Live departures and service alerts for public transit stops",
	Long: `livelink serves live departure boards for public transit stops.

It merges a weekly timetable with GTFS-Realtime delay and alert feeds and
exposes the result as a JSON API and an HTML departure board.

Quick Start:
  1. Import a timetable:    livelink import ./data/timetable.zip
  2. Start the server:      livelink serve
  3. Show departures:       livelink departures 71634
  4. Show alerts:           livelink alerts --line S4
  5. Find a stop:           livelink stops --search "hauptbahnhof"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig   string
	flagLogLevel string
	flagServer   string
	flagColor    string
	flagJSON     bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(departuresCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(stopsCmd)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", envOr("LIVELINK_SERVER", "http://localhost:8080"), "LiveLink server URL for query commands")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
}

// loadConfig reads the config file and environment, then applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = strings.ToLower(flagLogLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
