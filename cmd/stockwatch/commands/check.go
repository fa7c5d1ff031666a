/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch"
	"github.com/suparena/stockwatch/config"
)

var initTable bool

func init() {
	checkCmd.Flags().BoolVar(&initTable, "init-table", false, "create the state table before checking")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs the configured check passes once and prints the result.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if initTable {
			if err := ensureTable(cmd.Context(), cfg, log); err != nil {
				return err
			}
		}

		result, err := runOnce(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func runOnce(ctx context.Context, cfg *config.Config, log *zap.Logger) (stockwatch.RunResult, error) {
	checker, closer, err := stockwatch.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return stockwatch.RunResult{}, err
	}
	defer closer.Close()

	return checker.Run(ctx)
}
