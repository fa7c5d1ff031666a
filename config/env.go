/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/suparena/stockwatch/errors"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type binding struct {
	keys []string
	set  func(c *Config, v string) error
}

func str(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = v; return nil }
}

func list(dst func(c *Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = splitList(v); return nil }
}

func integer(name string, dst func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(name, fmt.Sprintf("invalid integer %q", v))
		}
		*dst(c) = n
		return nil
	}
}

func duration(name string, dst func(c *Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.NewValidationError(name, fmt.Sprintf("invalid duration %q", v))
		}
		*dst(c) = d
		return nil
	}
}

func boolean(name string, dst func(c *Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidationError(name, fmt.Sprintf("invalid boolean %q", v))
		}
		*dst(c) = b
		return nil
	}
}

func float(name string, dst func(c *Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError(name, fmt.Sprintf("invalid number %q", v))
		}
		*dst(c) = f
		return nil
	}
}

// Earlier keys win; the unprefixed names are the ones the Lambda deployment uses.
var bindings = []binding{
	{[]string{"STOCKWATCH_APPLE_URL", "APPLE_URL"}, str(func(c *Config) *string { return &c.Vendor.URL })},
	{[]string{"STOCKWATCH_SHOP_URL"}, str(func(c *Config) *string { return &c.Vendor.ShopURL })},
	{[]string{"STOCKWATCH_COOKIE", "APPLE_COOKIE"}, str(func(c *Config) *string { return &c.Vendor.Cookie })},
	{[]string{"STOCKWATCH_USER_AGENT"}, str(func(c *Config) *string { return &c.Vendor.UserAgent })},
	{[]string{"STOCKWATCH_ZIP_CODES", "ZIP_CODES"}, list(func(c *Config) *[]string { return &c.Vendor.ZipCodes })},
	{[]string{"STOCKWATCH_PARTS", "PARTS"}, list(func(c *Config) *[]string { return &c.Vendor.Parts })},
	{[]string{"STOCKWATCH_HTTP_TIMEOUT"}, duration("timeout", func(c *Config) *time.Duration { return &c.Vendor.Timeout })},
	{[]string{"STOCKWATCH_MAX_RETRIES"}, integer("max_retries", func(c *Config) *int { return &c.Vendor.MaxRetries })},
	{[]string{"STOCKWATCH_INITIAL_DELAY"}, duration("initial_delay", func(c *Config) *time.Duration { return &c.Vendor.InitialDelay })},
	{[]string{"STOCKWATCH_MAX_DELAY"}, duration("max_delay", func(c *Config) *time.Duration { return &c.Vendor.MaxDelay })},

	{[]string{"STOCKWATCH_BOT_TOKEN", "BOT_TOKEN"}, str(func(c *Config) *string { return &c.Telegram.BotToken })},
	{[]string{"STOCKWATCH_TELEGRAM_API_URL"}, str(func(c *Config) *string { return &c.Telegram.APIURL })},
	{[]string{"STOCKWATCH_RECIPIENTS", "RECIPIENTS"}, list(func(c *Config) *[]string { return &c.Telegram.Recipients })},
	{[]string{"STOCKWATCH_MAX_MESSAGE_LENGTH"}, integer("max_message_length", func(c *Config) *int { return &c.Telegram.MaxMessageLength })},
	{[]string{"STOCKWATCH_RATE_PER_SECOND"}, float("rate_per_second", func(c *Config) *float64 { return &c.Telegram.RatePerSecond })},
	{[]string{"STOCKWATCH_BURST"}, integer("burst", func(c *Config) *int { return &c.Telegram.Burst })},
	{[]string{"STOCKWATCH_TELEGRAM_TIMEOUT"}, duration("telegram_timeout", func(c *Config) *time.Duration { return &c.Telegram.Timeout })},
	{[]string{"STOCKWATCH_SNAPSHOT"}, boolean("snapshot", func(c *Config) *bool { return &c.Telegram.Snapshot })},
	{[]string{"STOCKWATCH_NOTIFY_ERRORS"}, boolean("notify_errors", func(c *Config) *bool { return &c.Telegram.NotifyErrors })},

	{[]string{"STOCKWATCH_STORE_BACKEND"}, str(func(c *Config) *string { return &c.Store.Backend })},
	{[]string{"STOCKWATCH_TABLE_NAME", "DYNAMODB_TABLE_NAME"}, str(func(c *Config) *string { return &c.Store.TableName })},
	{[]string{"STOCKWATCH_AWS_REGION", "AWS_REGION"}, str(func(c *Config) *string { return &c.Store.Region })},
	{[]string{"STOCKWATCH_DYNAMODB_ENDPOINT", "AWS_ENDPOINT_URL"}, str(func(c *Config) *string { return &c.Store.Endpoint })},
	{[]string{"STOCKWATCH_SQLITE_PATH"}, str(func(c *Config) *string { return &c.Store.SQLitePath })},

	{[]string{"STOCKWATCH_PASSES"}, integer("passes", func(c *Config) *int { return &c.Run.Passes })},
	{[]string{"STOCKWATCH_PASS_INTERVAL"}, duration("pass_interval", func(c *Config) *time.Duration { return &c.Run.PassInterval })},
	{[]string{"STOCKWATCH_SCHEDULE"}, str(func(c *Config) *string { return &c.Run.Schedule })},

	{[]string{"STOCKWATCH_LOG_LEVEL", "LOG_LEVEL"}, str(func(c *Config) *string { return &c.Log.Level })},
	{[]string{"STOCKWATCH_LOG_FILE"}, str(func(c *Config) *string { return &c.Log.File })},
	{[]string{"STOCKWATCH_LOG_DEVELOPMENT"}, boolean("development", func(c *Config) *bool { return &c.Log.Development })},
}

// ApplyEnv overrides fields from environment variables. AWS credentials are left to the SDK's
// default chain.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range bindings {
		for _, key := range b.keys {
			v, ok := lookup(key)
			if !ok || v == "" {
				continue
			}
			if err := b.set(c, v); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			break
		}
	}
	return nil
}
