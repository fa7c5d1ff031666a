/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stockwatch

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/suparena/stockwatch/config"
	"github.com/suparena/stockwatch/fetcher"
	"github.com/suparena/stockwatch/notifier"
	"github.com/suparena/stockwatch/pickup"
)

// NewFromConfig validates cfg and wires a Checker with its fetcher, state store and Telegram
// notifier. The returned closer releases the state store.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Checker, io.Closer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	f, err := fetcher.New(cfg.FetcherConfig(), log.Named("fetcher"))
	if err != nil {
		return nil, nil, err
	}

	sender, err := notifier.NewTelegramSender(cfg.TelegramSenderConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create telegram sender: %w", err)
	}
	n := notifier.New(sender, cfg.NotifierConfig(), log.Named("notifier"))

	store, err := OpenStateStore(ctx, cfg, log.Named("store"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}

	checker := NewChecker(f, pickup.Extractor{ShopURL: cfg.Vendor.ShopURL, Log: log.Named("pickup")}, store, n, Options{
		Locations:    cfg.Locations(),
		Parts:        cfg.Vendor.Parts,
		Passes:       cfg.Run.Passes,
		PassInterval: cfg.Run.PassInterval,
	}, log)
	return checker, store, nil
}
