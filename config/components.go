/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"time"

	"github.com/suparena/stockwatch/datastore/ddb"
	"github.com/suparena/stockwatch/datastore/sqlite"
	"github.com/suparena/stockwatch/fetcher"
	"github.com/suparena/stockwatch/logger"
	"github.com/suparena/stockwatch/notifier"
)

// FetcherConfig maps the vendor settings onto the fetcher.
func (c *Config) FetcherConfig() fetcher.Config {
	return fetcher.Config{
		BaseURL:      c.Vendor.URL,
		Cookie:       c.Vendor.Cookie,
		UserAgent:    c.Vendor.UserAgent,
		Timeout:      c.Vendor.Timeout,
		MaxRetries:   c.Vendor.MaxRetries,
		InitialDelay: c.Vendor.InitialDelay,
		MaxDelay:     c.Vendor.MaxDelay,
	}
}

// NotifierConfig maps the Telegram delivery settings onto the notifier.
func (c *Config) NotifierConfig() notifier.Config {
	return notifier.Config{
		Recipients:       nonEmpty(c.Telegram.Recipients),
		MaxMessageLength: c.Telegram.MaxMessageLength,
		RatePerSecond:    c.Telegram.RatePerSecond,
		Burst:            c.Telegram.Burst,
		SnapshotEnabled:  c.Telegram.Snapshot,
		NotifyErrors:     c.Telegram.NotifyErrors,
	}
}

// TelegramSenderConfig returns the bot client settings.
func (c *Config) TelegramSenderConfig() notifier.TelegramConfig {
	return notifier.TelegramConfig{
		Token:   c.Telegram.BotToken,
		APIURL:  c.Telegram.APIURL,
		Timeout: c.Telegram.Timeout,
	}
}

// DynamoDBOptions returns the client options. A local endpoint without credentials gets the
// placeholder keys DynamoDB Local accepts.
func (c *Config) DynamoDBOptions() ddb.ClientOptions {
	opts := ddb.ClientOptions{
		Region:    c.Store.Region,
		AccessKey: c.Store.AccessKey,
		SecretKey: c.Store.SecretKey,
		Endpoint:  c.Store.Endpoint,
	}
	if opts.Endpoint != "" && opts.AccessKey == "" && opts.SecretKey == "" {
		opts.AccessKey, opts.SecretKey = "test", "test"
	}
	return opts
}

// SQLiteOptions returns the local state database settings.
func (c *Config) SQLiteOptions() sqlite.Options {
	return sqlite.Options{Path: c.Store.SQLitePath, BusyTimeout: 5 * time.Second}
}

// LoggerOptions returns the logger settings.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		File:        c.Log.File,
		MaxSizeMB:   c.Log.MaxSizeMB,
		MaxBackups:  c.Log.MaxBackups,
		MaxAgeDays:  c.Log.MaxAgeDays,
	}
}
