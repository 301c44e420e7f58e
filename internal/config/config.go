package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the configuration shared by every moxnotify service.
type Config struct {
	Bus          Bus            `mapstructure:"bus"`
	ControlPlane ControlPlane   `mapstructure:"control_plane"`
	Scheduler    Scheduler      `mapstructure:"scheduler"`
	Searcher     Searcher       `mapstructure:"searcher"`
	Indexer      Indexer        `mapstructure:"indexer"`
	Janitor      Janitor        `mapstructure:"janitor"`
	Collector    Collector      `mapstructure:"collector"`
	Index        Index          `mapstructure:"index"`
	Retry        retry.Strategy `mapstructure:"retry"`
}

// Bus holds the message bus connection parameters.
type Bus struct {
	Address string `mapstructure:"address"` // redis:// URL
}

// ControlPlane holds the collector ingress configuration.
type ControlPlane struct {
	Address  string `mapstructure:"address"`
	LogLevel string `mapstructure:"log_level"`
}

// Scheduler holds the viewer ingress configuration.
type Scheduler struct {
	Address        string         `mapstructure:"address"`
	DefaultTimeout DefaultTimeout `mapstructure:"default_timeout"`
	LogLevel       string         `mapstructure:"log_level"`
}

// Searcher holds the HTTP query front-end configuration.
type Searcher struct {
	Address  string `mapstructure:"address"`
	LogLevel string `mapstructure:"log_level"`
}

// Indexer holds the stream-to-index consumer configuration.
type Indexer struct {
	ControlPlaneAddress string `mapstructure:"control_plane_address"`
	LogLevel            string `mapstructure:"log_level"`
}

// Janitor holds the retention sweep configuration.
type Janitor struct {
	Retention Retention `mapstructure:"retention"`
	LogLevel  string    `mapstructure:"log_level"`
}

// Retention configures how long index documents live and how often the
// janitor checks. Both accept Go durations or the aliases hourly, daily,
// weekly and monthly.
type Retention struct {
	Period   string `mapstructure:"period"`
	Schedule string `mapstructure:"schedule"`
}

// Collector holds the collector adapter configuration.
type Collector struct {
	ControlPlaneAddress string `mapstructure:"control_plane_address"`
	LogLevel            string `mapstructure:"log_level"`
}

// DefaultTimeout is the per-urgency expiry fallback, in seconds.
// Zero means the notification never expires.
type DefaultTimeout struct {
	UrgencyLow      int `mapstructure:"urgency_low"`
	UrgencyNormal   int `mapstructure:"urgency_normal"`
	UrgencyCritical int `mapstructure:"urgency_critical"`
}

// Index holds the on-disk index location.
type Index struct {
	Path string `mapstructure:"path"`
}

// PeriodDuration parses the retention period.
func (r Retention) PeriodDuration() (time.Duration, error) {
	return ParseSchedule(r.Period)
}

// ScheduleDuration parses the sweep interval.
func (r Retention) ScheduleDuration() (time.Duration, error) {
	return ParseSchedule(r.Schedule)
}

// ParseSchedule accepts the retention aliases or any Go duration string.
func ParseSchedule(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return time.Hour, nil
	case "daily":
		return 24 * time.Hour, nil
	case "weekly":
		return 7 * 24 * time.Hour, nil
	case "monthly":
		return 30 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// DefaultIndexPath resolves $XDG_DATA_HOME/moxnotify, falling back to
// ~/.local/share/moxnotify, and creates parent directories.
func DefaultIndexPath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "share")
		}
	}
	path := filepath.Join(base, "moxnotify")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		zlog.Logger.Warn().Err(err).Str("path", path).Msg("failed to create data directory")
	}
	return path
}

func setDefaults() {
	viper.SetDefault("bus.address", "redis://127.0.0.1/")
	viper.SetDefault("control_plane.address", "[::1]:64201")
	viper.SetDefault("control_plane.log_level", "info")
	viper.SetDefault("scheduler.address", "[::1]:64202")
	viper.SetDefault("scheduler.default_timeout.urgency_low", 5)
	viper.SetDefault("scheduler.default_timeout.urgency_normal", 10)
	viper.SetDefault("scheduler.default_timeout.urgency_critical", 0)
	viper.SetDefault("scheduler.log_level", "info")
	viper.SetDefault("searcher.address", "0.0.0.0:64203")
	viper.SetDefault("searcher.log_level", "info")
	viper.SetDefault("indexer.control_plane_address", "http://[::1]:64201")
	viper.SetDefault("indexer.log_level", "info")
	viper.SetDefault("janitor.retention.period", "2160h") // 90 days
	viper.SetDefault("janitor.retention.schedule", "daily")
	viper.SetDefault("janitor.log_level", "info")
	viper.SetDefault("collector.control_plane_address", "http://[::1]:64201")
	viper.SetDefault("collector.log_level", "info")
	viper.SetDefault("retry.attempts", 3)
	viper.SetDefault("retry.delay", 50*time.Millisecond)
	viper.SetDefault("retry.backoff", 2.0)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"bus.address":           "MOXNOTIFY_BUS_ADDRESS",
		"control_plane.address": "MOXNOTIFY_CONTROL_PLANE_ADDR",
		"scheduler.address":     "MOXNOTIFY_SCHEDULER_ADDR",
		"searcher.address":      "MOXNOTIFY_SEARCHER_ADDR",
		"index.path":            "MOXNOTIFY_INDEX_PATH",

		"collector.control_plane_address": "MOXNOTIFY_COLLECTOR_CONTROL_PLANE_ADDR",
		"indexer.control_plane_address":   "MOXNOTIFY_INDEXER_CONTROL_PLANE_ADDR",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// Must loads and validates the configuration from file and environment
// variables.
//
// It panics if configuration cannot be read or unmarshalled. A missing
// config file is fine; defaults cover every key.
func Must() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			zlog.Logger.Panic().Err(err).Msg("failed to read config")
		}
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	if cfg.Index.Path == "" {
		cfg.Index.Path = DefaultIndexPath()
	}

	return &cfg
}
