// Package config loads tool settings from an optional YAML file with
// environment variable expansion. Every field has a working default, so
// running without a config file is fine.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Download DownloadConfig `yaml:"download"`
	History  HistoryConfig  `yaml:"history"`
	LogLevel string         `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Lang       string        `yaml:"lang"`
	PageSize   int           `yaml:"page_size"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

type DownloadConfig struct {
	Path               string `yaml:"path"`
	EpisodeConcurrency int    `yaml:"episode_concurrency"`
	ProbeConcurrency   int    `yaml:"probe_concurrency"`
	ResizeCovers       bool   `yaml:"resize_covers"`
	CoverMaxSize       int    `yaml:"cover_max_size"`
}

type HistoryConfig struct {
	File string `yaml:"file"`
}

// Load reads the config file at path, expands ${VAR} references from the
// environment (a .env file is honored when present) and fills in defaults.
// A missing file yields a pure-default config; any other read error fails.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// run on defaults
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://streamapi.web.id/api-dramabox"
	}
	if c.API.APIKey == "" {
		c.API.APIKey = os.Getenv("DRAMABOX_API_KEY")
	}
	if c.API.Lang == "" {
		c.API.Lang = "in"
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = 10
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Retries == 0 {
		c.API.Retries = 5
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = 2 * time.Second
	}
	if c.Download.Path == "" {
		c.Download.Path = "downloads"
	}
	if c.Download.EpisodeConcurrency == 0 {
		c.Download.EpisodeConcurrency = 5
	}
	if c.Download.ProbeConcurrency == 0 {
		c.Download.ProbeConcurrency = 10
	}
	if c.Download.CoverMaxSize == 0 {
		c.Download.CoverMaxSize = 1200
	}
	if c.History.File == "" {
		c.History.File = "download_history.json"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// SlogLevel maps the configured log level string onto a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
