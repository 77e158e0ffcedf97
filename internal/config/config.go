package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrWebhookMissing means there is nowhere to deliver to; the run must stop.
var ErrWebhookMissing = errors.New("DISCORD_WEBHOOK_URL is required")

type Config struct {
	// Delivery
	WebhookURL string

	// Sources
	SourcesPath string
	Only        []string // source names to run; empty runs all
	Sources     []Source
	Summary     SummaryConfig

	// Fetching and pacing
	RequestTimeout time.Duration
	ListingTimeout time.Duration
	FetchPause     time.Duration
	SendPause      time.Duration
	ChromePath     string

	// Scheduling
	Schedule string // cron spec; empty runs once
	Timezone string

	// App settings
	Debug             bool
	LogFile           string
	MonitoringEnabled bool
	MonitoringPort    string
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		SourcesPath:    "configs/sources.yaml",
		RequestTimeout: 10 * time.Second,
		ListingTimeout: 30 * time.Second,
		FetchPause:     time.Second,
		SendPause:      time.Second,
		Timezone:       "Asia/Seoul",
		MonitoringPort: "8080",
	}

	cfg.WebhookURL = strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	cfg.SourcesPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesPath)
	cfg.Only = splitList(os.Getenv("SOURCES"))
	cfg.ChromePath = os.Getenv("CHROME_PATH")
	cfg.Schedule = strings.TrimSpace(os.Getenv("SCHEDULE"))
	cfg.Timezone = getEnvOrDefault("TIMEZONE", cfg.Timezone)
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	if v := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("LISTING_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.ListingTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("FETCH_PAUSE_MS", -1); v >= 0 {
		cfg.FetchPause = time.Duration(v) * time.Millisecond
	}
	if v := getEnvIntOrDefault("SEND_PAUSE_MS", -1); v >= 0 {
		cfg.SendPause = time.Duration(v) * time.Millisecond
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		cfg.MonitoringEnabled = true
	}

	file, err := LoadSources(cfg.SourcesPath)
	if err != nil {
		return cfg, err
	}
	cfg.Sources = file.Sources
	cfg.Summary = file.Summary

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks presence of required settings only.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return ErrWebhookMissing
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	for i, s := range c.Sources {
		if err := s.validate(); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	for _, name := range c.Only {
		if _, ok := c.Source(name); !ok {
			return fmt.Errorf("SOURCES names unknown source %q", name)
		}
	}
	return nil
}

// Source returns the configured source with the given name.
func (c *Config) Source(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// Selected returns the sources to run, in configuration order.
func (c *Config) Selected() []Source {
	if len(c.Only) == 0 {
		return c.Sources
	}
	want := make(map[string]bool, len(c.Only))
	for _, n := range c.Only {
		want[n] = true
	}
	var out []Source
	for _, s := range c.Sources {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out
}
