/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch"
	"github.com/suparena/stockwatch/config"
	"github.com/suparena/stockwatch/datastore/ddb"
)

var tableWait time.Duration

func init() {
	initTableCmd.Flags().DurationVar(&tableWait, "wait", ddb.DefaultTableWait, "how long to wait for the table to become active")
	rootCmd.AddCommand(initTableCmd)
}

var initTableCmd = &cobra.Command{
	Use:   "init-table",
	Short: "Creates the state table when it does not exist.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return ensureTable(cmd.Context(), cfg, log)
	},
}

func ensureTable(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := stockwatch.OpenStateStore(ctx, cfg, log.Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()

	ti, ok := store.(stockwatch.TableInitializer)
	if !ok {
		log.Info("backend manages its own schema", zap.String("backend", cfg.Store.Backend))
		return nil
	}
	wait := tableWait
	if wait <= 0 {
		wait = ddb.DefaultTableWait
	}
	created, err := ti.EnsureTable(ctx, wait)
	if err != nil {
		return fmt.Errorf("failed to initialize table %q: %w", cfg.Store.TableName, err)
	}
	log.Info("state table ready", zap.String("table", cfg.Store.TableName), zap.Bool("created", created))
	return nil
}
