// Package config holds all environment-based configuration for
// skport-sync, plus an optional YAML file for schedule tuning.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded from environment variables. Schedule knobs can be
// overridden by a YAML file (ScheduleFile) when present.
type Config struct {
	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:""`

	// StorePath is the bbolt database holding linked accounts and events.
	// Defaults to ~/.skport-sync/accounts.db when empty.
	StorePath string `env:"STORE_PATH"`

	// StoreSecret seals credential tokens at rest. Required.
	StoreSecret string `env:"STORE_SECRET"`

	// Language is sent as the sk-language header on API calls.
	Language string `env:"SK_LANGUAGE" envDefault:"en"`

	// RequestTimeout bounds every outbound API call.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// NotifyWebhookURL, when set, receives best-effort sweep summaries.
	NotifyWebhookURL string `env:"NOTIFY_WEBHOOK_URL"`

	// ScheduleFile points at an optional YAML schedule override file.
	ScheduleFile string `env:"SCHEDULE_FILE" envDefault:"skport-sync.yaml"`

	Schedule Schedule `env:"-"`
}

// Schedule tunes the background sweeps and cache lifetimes.
type Schedule struct {
	// AttendanceAt is the daily attendance sweep time in UTC, "HH:MM".
	AttendanceAt string `yaml:"attendance_at"`

	// RefreshEvery is the interval between credential token refresh sweeps.
	RefreshEvery time.Duration `yaml:"refresh_every"`

	// SweepConcurrency caps simultaneous in-flight account operations.
	SweepConcurrency int `yaml:"sweep_concurrency"`

	// SweepJitterMax is the random delay before each sweep starts.
	SweepJitterMax time.Duration `yaml:"sweep_jitter_max"`

	CatalogTTL    time.Duration `yaml:"catalog_ttl"`
	CardDetailTTL time.Duration `yaml:"card_detail_ttl"`
	WikiTTL       time.Duration `yaml:"wiki_ttl"`
}

func defaultSchedule() Schedule {
	return Schedule{
		AttendanceAt:     "16:05",
		RefreshEvery:     12 * time.Hour,
		SweepConcurrency: 10,
		SweepJitterMax:   55 * time.Minute,
		CatalogTTL:       5 * time.Minute,
		CardDetailTTL:    30 * time.Minute,
		WikiTTL:          7 * 24 * time.Hour,
	}
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables. It first attempts
// to load a .env file if present, then parses env vars, then overlays the
// schedule file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Schedule = defaultSchedule()

	if err := cfg.loadScheduleFile(); err != nil {
		return nil, err
	}

	if cfg.StorePath == "" {
		path, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}

		cfg.StorePath = path
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadScheduleFile overlays non-zero values from the YAML schedule file.
// A missing file is not an error; a malformed one is.
func (c *Config) loadScheduleFile() error {
	if c.ScheduleFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.ScheduleFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("reading schedule file: %w", err)
	}

	var overlay Schedule
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing schedule file %s: %w", c.ScheduleFile, err)
	}

	c.Schedule.merge(overlay)

	return nil
}

func (s *Schedule) merge(o Schedule) {
	if o.AttendanceAt != "" {
		s.AttendanceAt = o.AttendanceAt
	}

	if o.RefreshEvery > 0 {
		s.RefreshEvery = o.RefreshEvery
	}

	if o.SweepConcurrency > 0 {
		s.SweepConcurrency = o.SweepConcurrency
	}

	if o.SweepJitterMax > 0 {
		s.SweepJitterMax = o.SweepJitterMax
	}

	if o.CatalogTTL > 0 {
		s.CatalogTTL = o.CatalogTTL
	}

	if o.CardDetailTTL > 0 {
		s.CardDetailTTL = o.CardDetailTTL
	}

	if o.WikiTTL > 0 {
		s.WikiTTL = o.WikiTTL
	}
}

func (c *Config) validate() error {
	if c.StoreSecret == "" {
		return fmt.Errorf("STORE_SECRET is required to seal stored credential tokens")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if _, _, err := ParseClock(c.Schedule.AttendanceAt); err != nil {
		return fmt.Errorf("attendance_at: %w", err)
	}

	if c.Schedule.RefreshEvery <= 0 {
		return fmt.Errorf("refresh_every must be positive")
	}

	if c.Schedule.SweepConcurrency <= 0 {
		return fmt.Errorf("sweep_concurrency must be positive")
	}

	return nil
}

// ParseClock parses an "HH:MM" wall-clock string.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q (want HH:MM): %w", s, err)
	}

	return t.Hour(), t.Minute(), nil
}

// DefaultStorePath returns ~/.skport-sync/accounts.db.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".skport-sync", "accounts.db"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
