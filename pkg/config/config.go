package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TrackerConfig holds the sweep loop settings. Intervals are plain
// seconds in the YAML file.
type TrackerConfig struct {
	DatabasePath         string `yaml:"database_path"`
	URLsFile             string `yaml:"urls_file"`
	BatchSize            int    `yaml:"batch_size"`
	Workers              string `yaml:"workers"`
	CheckIntervalSec     int    `yaml:"check_interval_sec"`
	HeartbeatIntervalSec int    `yaml:"heartbeat_interval_sec"`
	MaxRetries           int    `yaml:"max_retries"`
	RetryBackoffSec      int    `yaml:"retry_backoff_sec"`
}

// CheckInterval is the minimum time between sweep starts.
func (t TrackerConfig) CheckInterval() time.Duration {
	return time.Duration(t.CheckIntervalSec) * time.Second
}

// HeartbeatInterval is the time between liveness signals.
func (t TrackerConfig) HeartbeatInterval() time.Duration {
	return time.Duration(t.HeartbeatIntervalSec) * time.Second
}

// RetryBackoff is the base delay between attempts for one URL; the retry
// policy scales it linearly with the attempt number.
func (t TrackerConfig) RetryBackoff() time.Duration {
	return time.Duration(t.RetryBackoffSec) * time.Second
}

// SourceConfig holds per-site scraping settings.
type SourceConfig struct {
	MinFetchDelaySec int      `yaml:"min_fetch_delay_sec"`
	Headless         bool     `yaml:"headless"`
	DiscoveryURLs    []string `yaml:"discovery_urls"`
}

// MinFetchDelay is the minimum spacing between two fetches against the
// same source.
func (s SourceConfig) MinFetchDelay() time.Duration {
	return time.Duration(s.MinFetchDelaySec) * time.Second
}

// FilterConfig narrows discovery results.
type FilterConfig struct {
	Keywords         []string `yaml:"keywords"`
	ExcludedKeywords []string `yaml:"excluded_keywords"`
	ExcludedURLs     []string `yaml:"excluded_urls"`
	ReferralTag      string   `yaml:"referral_tag"`
}

// TelegramConfig holds delivery settings for product alerts.
type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// EmailConfig holds delivery settings for operator alerts.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	To         string `yaml:"to"`
}

// ServerConfig holds the read-only API settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Config is the complete structure of config.yml.
type Config struct {
	Tracker  TrackerConfig  `yaml:"tracker"`
	Amazon   SourceConfig   `yaml:"amazon"`
	GameStop SourceConfig   `yaml:"gamestop"`
	Filter   FilterConfig   `yaml:"filter"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
	Server   ServerConfig   `yaml:"server"`
}

// LoadConfig reads the YAML config file, applying defaults and
// environment overrides for the secrets.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config YAML: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tracker.DatabasePath == "" {
		c.Tracker.DatabasePath = "products.db"
	}
	if c.Tracker.URLsFile == "" {
		c.Tracker.URLsFile = "urls.yml"
	}
	if c.Tracker.BatchSize <= 0 {
		c.Tracker.BatchSize = 5
	}
	if c.Tracker.Workers == "" {
		c.Tracker.Workers = "auto"
	}
	if c.Tracker.CheckIntervalSec <= 0 {
		c.Tracker.CheckIntervalSec = 60
	}
	if c.Tracker.HeartbeatIntervalSec <= 0 {
		c.Tracker.HeartbeatIntervalSec = 21600
	}
	if c.Tracker.MaxRetries <= 0 {
		c.Tracker.MaxRetries = 3
	}
	if c.Tracker.RetryBackoffSec <= 0 {
		c.Tracker.RetryBackoffSec = 5
	}
	if c.Amazon.MinFetchDelaySec <= 0 {
		c.Amazon.MinFetchDelaySec = 4
	}
	if c.GameStop.MinFetchDelaySec <= 0 {
		c.GameStop.MinFetchDelaySec = 20
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
}

// Secrets can live in the environment instead of the config file; the
// environment wins when both are set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHANNEL_ID"); v != "" {
		c.Telegram.ChannelID = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv("REFERRAL_TAG"); v != "" {
		c.Filter.ReferralTag = v
	}
}
