/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads stockwatch settings from defaults, a YAML file, a .env file,
// environment variables and an invocation payload, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/stockwatch/errors"
)

// Store backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// DefaultTableName is the DynamoDB table used when none is configured.
const DefaultTableName = "IPHONE15_STOCK"

// telegramHardLimit is the bot API's maximum message length.
const telegramHardLimit = 4096

// Config is the complete stockwatch configuration.
type Config struct {
	Vendor   VendorConfig   `yaml:"vendor"`
	Telegram TelegramConfig `yaml:"telegram"`
	Store    StoreConfig    `yaml:"store"`
	Run      RunConfig      `yaml:"run"`
	Log      LogConfig      `yaml:"log"`
}

// VendorConfig describes the fulfillment endpoint and how to call it.
type VendorConfig struct {
	URL       string   `yaml:"apple_url"`
	ShopURL   string   `yaml:"shop_url"`
	Cookie    string   `yaml:"cookie"`
	UserAgent string   `yaml:"user_agent"`
	ZipCodes  []string `yaml:"zip_codes"`
	Parts     []string `yaml:"parts"`

	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// TelegramConfig configures the bot client and message delivery.
type TelegramConfig struct {
	BotToken         string   `yaml:"bot_token"`
	APIURL           string   `yaml:"api_url"`
	Recipients       []string `yaml:"recipients"`
	MaxMessageLength int      `yaml:"max_message_length"`
	RatePerSecond    float64  `yaml:"rate_per_second"`
	Burst            int      `yaml:"burst"`
	Snapshot         bool     `yaml:"snapshot"`
	NotifyErrors     bool     `yaml:"notify_errors"`

	// Timeout bounds each bot API request.
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the state backend.
type StoreConfig struct {
	Backend    string `yaml:"backend"`
	TableName  string `yaml:"table_name"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	SQLitePath string `yaml:"sqlite_path"`
}

// RunConfig controls passes per run and the watch schedule.
type RunConfig struct {
	Passes       int           `yaml:"passes"`
	PassInterval time.Duration `yaml:"pass_interval"`
	// Schedule is a cron spec used by the watch command.
	Schedule string `yaml:"schedule"`
}

// LogConfig configures logging and file rotation.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Vendor: VendorConfig{
			Timeout:      15 * time.Second,
			MaxRetries:   3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
		},
		Telegram: TelegramConfig{
			MaxMessageLength: 4000,
			RatePerSecond:    1,
			Burst:            1,
			Timeout:          10 * time.Second,
			NotifyErrors:     true,
		},
		Store: StoreConfig{
			Backend:    BackendDynamoDB,
			TableName:  DefaultTableName,
			Region:     "us-east-1",
			SQLitePath: "./data/stockwatch.db",
		},
		Run: RunConfig{
			Passes:       1,
			PassInterval: 30 * time.Second,
			Schedule:     "@every 1m",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load builds the configuration. An empty configPath skips the YAML file; an empty envFile means ".env".
// A missing .env file is not an error.
func Load(configPath, envFile string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting as an errors.ValidationError.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Vendor.URL) == "":
		return errors.NewValidationError("apple_url", "vendor URL is required")
	case strings.TrimSpace(c.Telegram.BotToken) == "":
		return errors.NewValidationError("bot_token", "telegram bot token is required")
	case len(nonEmpty(c.Telegram.Recipients)) == 0:
		return errors.NewValidationError("recipients", "at least one recipient is required")
	case c.Telegram.MaxMessageLength <= 0 || c.Telegram.MaxMessageLength > telegramHardLimit:
		return errors.NewValidationError("max_message_length", fmt.Sprintf("must be between 1 and %d", telegramHardLimit))
	case c.Vendor.MaxRetries < 0:
		return errors.NewValidationError("max_retries", "must not be negative")
	case c.Run.Passes < 1:
		return errors.NewValidationError("passes", "at least one pass is required")
	}

	switch c.Store.Backend {
	case BackendDynamoDB:
		if c.Store.TableName == "" {
			return errors.NewValidationError("table_name", "DynamoDB table name is required")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.NewValidationError("sqlite_path", "sqlite path is required")
		}
	case BackendMemory:
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}
	return nil
}

// Locations returns the configured ZIP codes, or a single empty location so the base URL is used as is.
func (c *Config) Locations() []string {
	zips := nonEmpty(c.Vendor.ZipCodes)
	if len(zips) == 0 {
		return []string{""}
	}
	return zips
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitList parses a comma or whitespace separated list.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}
