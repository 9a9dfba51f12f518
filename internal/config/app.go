package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

const (
	EnvAppName          = "ACTIGRAPHY_APP_NAME"
	EnvDefaultSleepTime = "ACTIGRAPHY_DEFAULT_SLEEP_TIME"
	EnvTimeFormat       = "ACTIGRAPHY_TIME_FORMAT"
	EnvSliderSteps      = "ACTIGRAPHY_N_SLIDER_STEPS"
	EnvLogLevel         = "ACTIGRAPHY_LOG_LEVEL"
	EnvDSTCacheSize     = "ACTIGRAPHY_DST_CACHE_SIZE"
	EnvLogFormat        = "ACTIGRAPHY_LOG_FORMAT"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// AppConfig holds review settings shared by the server and the ingest CLI.
type AppConfig struct {
	Name             string `toml:"name"`
	DefaultSleepTime string `toml:"default_sleep_time"`
	TimeFormat       string `toml:"time_format"`
	SliderSteps      int    `toml:"slider_steps"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	DSTCacheSize     int    `toml:"dst_cache_size"`
}

// DefaultSleepOffset returns DefaultSleepTime as an offset from midnight.
func (c *AppConfig) DefaultSleepOffset() time.Duration {
	d, _ := parseClock(c.DefaultSleepTime)
	return d
}

// Level returns LogLevel as a slog.Level, defaulting to info.
func (c *AppConfig) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AppConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AppConfig) Merge(overlay *AppConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.DefaultSleepTime != "" {
		c.DefaultSleepTime = overlay.DefaultSleepTime
	}
	if overlay.TimeFormat != "" {
		c.TimeFormat = overlay.TimeFormat
	}
	if overlay.SliderSteps != 0 {
		c.SliderSteps = overlay.SliderSteps
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	if overlay.DSTCacheSize != 0 {
		c.DSTCacheSize = overlay.DSTCacheSize
	}
}

func (c *AppConfig) loadDefaults() {
	if c.Name == "" {
		c.Name = "Actigraphy"
	}
	if c.DefaultSleepTime == "" {
		c.DefaultSleepTime = "12:00:00"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "%A - %d %B %Y %H:%M %Z"
	}
	if c.SliderSteps == 0 {
		c.SliderSteps = 2160
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
}

func (c *AppConfig) loadEnv() error {
	envs.String(EnvAppName, &c.Name)
	envs.String(EnvDefaultSleepTime, &c.DefaultSleepTime)
	envs.String(EnvTimeFormat, &c.TimeFormat)
	envs.String(EnvLogLevel, &c.LogLevel)
	envs.String(EnvLogFormat, &c.LogFormat)
	if err := envs.Int(EnvSliderSteps, &c.SliderSteps); err != nil {
		return err
	}
	return envs.Int(EnvDSTCacheSize, &c.DSTCacheSize)
}

func (c *AppConfig) validate() error {
	if _, err := parseClock(c.DefaultSleepTime); err != nil {
		return fmt.Errorf("invalid default_sleep_time: %w", err)
	}
	if _, err := strftime.New(c.TimeFormat); err != nil {
		return fmt.Errorf("invalid time_format: %w", err)
	}
	if c.SliderSteps < 1 {
		return fmt.Errorf("slider_steps must be positive")
	}
	if c.DSTCacheSize < 0 {
		return fmt.Errorf("dst_cache_size cannot be negative")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	return nil
}

// parseClock parses HH:MM:SS or HH:MM into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	layout := "15:04:05"
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}
