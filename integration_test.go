//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stockwatch_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/stockwatch"
	"github.com/suparena/stockwatch/config"
)

// TestIntegrationCheckRun runs two checks end to end against DynamoDB Local, a stub vendor
// endpoint and a stub bot API. The second run sees identical data and must stay silent.
func TestIntegrationCheckRun(t *testing.T) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}

	payload, err := os.ReadFile("pickup/testdata/fulfillment.json")
	require.NoError(t, err)
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	defer vendor.Close()

	var sent atomic.Int32
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			sent.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	}))
	defer bot.Close()

	cfg := config.Default()
	cfg.Vendor.URL = vendor.URL + "/shop/fulfillment-messages"
	cfg.Vendor.MaxRetries = 0
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.APIURL = bot.URL
	cfg.Telegram.Recipients = []string{"1"}
	cfg.Telegram.RatePerSecond = 0
	cfg.Store.Backend = config.BackendDynamoDB
	cfg.Store.Endpoint = envOr("AWS_ENDPOINT_URL", "http://localhost:8000")
	cfg.Store.Region = envOr("AWS_REGION", "us-east-1")
	cfg.Store.TableName = fmt.Sprintf("stockwatch-e2e-%d", time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	logger := zaptest.NewLogger(t)

	store, err := stockwatch.OpenStateStore(ctx, cfg, logger)
	require.NoError(t, err)
	_, err = store.(stockwatch.TableInitializer).EnsureTable(ctx, 30*time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	checker, closer, err := stockwatch.NewFromConfig(ctx, cfg, logger)
	require.NoError(t, err)
	defer closer.Close()

	first, err := checker.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 200, first.Status)
	require.Positive(t, first.Changes)
	require.Positive(t, sent.Load())

	before := sent.Load()
	second, err := checker.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, second.Changes)
	require.Equal(t, before, sent.Load())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
