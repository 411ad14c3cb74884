// Package config loads application configuration from an optional TOML
// file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration for TOML text values like "30m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds application configuration.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Download DownloadConfig `toml:"download"`
	Relay    RelayConfig    `toml:"relay"`
	Progress ProgressConfig `toml:"progress"`
	Server   ServerConfig   `toml:"server"`
	History  HistoryConfig  `toml:"history"`
}

// TelegramConfig identifies the bot and the fixed destination group.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	GroupID  int64  `toml:"group_id"`
}

// DownloadConfig controls the fetch side.
type DownloadConfig struct {
	Dir     string   `toml:"dir"`
	Timeout Duration `toml:"timeout"`
}

// RelayConfig controls the upload retry budget.
type RelayConfig struct {
	MaxRetries int      `toml:"max_retries"`
	Backoff    Duration `toml:"backoff"`
}

// ProgressConfig controls the edit throttle.
type ProgressConfig struct {
	Window   Duration `toml:"window"`
	MinDelta float64  `toml:"min_delta"`
}

// ServerConfig controls the keep-alive HTTP server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// HistoryConfig controls the job history database.
type HistoryConfig struct {
	DBPath string `toml:"db_path"`
}

// Default returns the baseline configuration before file and env layers.
func Default() *Config {
	return &Config{
		Download: DownloadConfig{
			Dir:     "./downloads",
			Timeout: Duration{30 * time.Minute},
		},
		Relay: RelayConfig{
			MaxRetries: 3,
			Backoff:    Duration{5 * time.Second},
		},
		Progress: ProgressConfig{
			Window:   Duration{3 * time.Second},
			MinDelta: 5,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		History: HistoryConfig{
			DBPath: "./data/history.db",
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path if
// given, then environment overrides. Validation failures are fatal for
// the caller; the bot cannot run without a token and destination.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("RELAYBOT_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("RELAYBOT_GROUP_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.GroupID = id
		}
	}
	if v := os.Getenv("RELAYBOT_DOWNLOAD_DIR"); v != "" {
		c.Download.Dir = v
	}
	if v := os.Getenv("RELAYBOT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("RELAYBOT_DB"); v != "" {
		c.History.DBPath = v
	}
}

// Validate checks the fields the bot cannot start without.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required (telegram.bot_token or RELAYBOT_BOT_TOKEN)")
	}
	if c.Telegram.GroupID == 0 {
		return errors.New("telegram group id is required (telegram.group_id or RELAYBOT_GROUP_ID)")
	}
	return nil
}
