/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command lambda runs a single check per AWS Lambda invocation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch"
	"github.com/suparena/stockwatch/config"
	"github.com/suparena/stockwatch/logger"
)

type handler struct {
	load func() (*config.Config, error)
	log  *zap.Logger
}

// Handle applies the invocation payload over the environment configuration and runs the checker.
func (h *handler) Handle(ctx context.Context, event config.Event) (stockwatch.RunResult, error) {
	h.log.Info("invocation received", zap.Strings("fields", event.Received()))

	cfg, err := h.load()
	if err != nil {
		return stockwatch.RunResult{}, err
	}
	cfg.ApplyEvent(event)

	checker, closer, err := stockwatch.NewFromConfig(ctx, cfg, h.log)
	if err != nil {
		h.log.Error("invalid configuration", zap.Error(err))
		return stockwatch.RunResult{}, err
	}
	defer closer.Close()

	return checker.Run(ctx)
}

func main() {
	cfg, err := config.Load(os.Getenv("STOCKWATCH_CONFIG"), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	h := &handler{
		load: func() (*config.Config, error) { return config.Load(os.Getenv("STOCKWATCH_CONFIG"), "") },
		log:  log,
	}
	lambda.Start(h.Handle)
}
