package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration from defaults, an optional YAML file and environment variables.
type Config struct {
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	DBPath   string `yaml:"dbPath" validate:"required"`
	Timezone string `yaml:"timezone" validate:"required"`
	LogLevel string `yaml:"logLevel" validate:"oneof=debug info warn error"`

	LookAhead        time.Duration `yaml:"lookAhead" validate:"gt=0,lte=12h"`
	UpcomingCount    int           `yaml:"upcomingCount" validate:"gte=1,lte=10"`
	UpcomingInterval time.Duration `yaml:"upcomingInterval" validate:"gt=0"`
	SearchLimit      int           `yaml:"searchLimit" validate:"gte=1,lte=100"`

	TripUpdatesURL string        `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	AlertsURL      string        `yaml:"alertsURL" validate:"omitempty,url"`
	PollInterval   time.Duration `yaml:"pollInterval" validate:"gte=5s"`

	TimetableURL string `yaml:"timetableURL" validate:"omitempty,url"`
	TimetableDir string `yaml:"timetableDir"`

	CORSOrigins []string `yaml:"corsOrigins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:             8080,
		DBPath:           "./livelink.db",
		Timezone:         "Europe/Berlin",
		LogLevel:         "info",
		LookAhead:        2 * time.Hour,
		UpcomingCount:    3,
		UpcomingInterval: 15 * time.Minute,
		SearchLimit:      20,
		PollInterval:     30 * time.Second,
		TimetableDir:     "./data",
		CORSOrigins:      []string{"http://localhost:3000", "http://frontend:3000"},
	}
}

// Load reads configuration. path may be empty, in which case only defaults and
// environment variables apply. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envInt("LIVELINK_PORT", cfg.Port)
	cfg.DBPath = envStr("LIVELINK_DB_PATH", cfg.DBPath)
	cfg.Timezone = envStr("LIVELINK_TIMEZONE", cfg.Timezone)
	cfg.LogLevel = envStr("LIVELINK_LOG_LEVEL", cfg.LogLevel)
	cfg.LookAhead = envDuration("LIVELINK_LOOK_AHEAD", cfg.LookAhead)
	cfg.UpcomingCount = envInt("LIVELINK_UPCOMING_COUNT", cfg.UpcomingCount)
	cfg.UpcomingInterval = envDuration("LIVELINK_UPCOMING_INTERVAL", cfg.UpcomingInterval)
	cfg.SearchLimit = envInt("LIVELINK_SEARCH_LIMIT", cfg.SearchLimit)
	cfg.TripUpdatesURL = envStr("LIVELINK_TRIP_UPDATES_URL", cfg.TripUpdatesURL)
	cfg.AlertsURL = envStr("LIVELINK_ALERTS_URL", cfg.AlertsURL)
	cfg.PollInterval = envDuration("LIVELINK_POLL_INTERVAL", cfg.PollInterval)
	cfg.TimetableURL = envStr("LIVELINK_TIMETABLE_URL", cfg.TimetableURL)
	cfg.TimetableDir = envStr("LIVELINK_TIMETABLE_DIR", cfg.TimetableDir)
	if v := os.Getenv("LIVELINK_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the timezone is known.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
