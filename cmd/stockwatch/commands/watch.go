/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commands

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch"
)

var schedule string

func init() {
	watchCmd.Flags().StringVar(&schedule, "schedule", "", "cron spec overriding run.schedule")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs checks on a cron schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if schedule != "" {
			cfg.Run.Schedule = schedule
		}

		ctx := cmd.Context()
		checker, closer, err := stockwatch.NewFromConfig(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closer.Close()

		cronLog := cron.VerbosePrintfLogger(zap.NewStdLog(log.Named("cron")))
		c := cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		))
		if _, err := c.AddFunc(cfg.Run.Schedule, func() {
			if _, err := checker.Run(ctx); err != nil {
				log.Error("scheduled check failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", cfg.Run.Schedule, err)
		}

		log.Info("watching", zap.String("schedule", cfg.Run.Schedule), zap.String("backend", cfg.Store.Backend))
		c.Start()
		<-ctx.Done()

		log.Info("stopping; waiting for a running check to finish")
		<-c.Stop().Done()
		return nil
	},
}
