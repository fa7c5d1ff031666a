/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/suparena/stockwatch"
	"github.com/suparena/stockwatch/datastore"
	"github.com/suparena/stockwatch/notifier"
	"github.com/suparena/stockwatch/storagemodels"
)

var onlyAvailable bool

func init() {
	statusCmd.Flags().BoolVar(&onlyAvailable, "available", false, "list only available items")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Lists the recorded availability state.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		store, err := stockwatch.OpenStateStore(cmd.Context(), cfg, log.Named("store"))
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := datastore.Collect[storagemodels.AvailabilityRecord](
			cmd.Context(), store, storagemodels.WithPageSize(100))
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}
		renderStatus(os.Stdout, records, onlyAvailable)
		return nil
	},
}

func renderStatus(w io.Writer, records []storagemodels.AvailabilityRecord, availableOnly bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"", "Model", "Store", "ZIP", "Availability", "Updated"})

	shown := 0
	for _, r := range records {
		if availableOnly && !r.IsAvailable() {
			continue
		}
		icon, _ := notifier.Icon(r.Availability)
		t.AppendRow(table.Row{icon, r.Model, r.StoreName, r.PostalCode, r.Availability, r.UpdatedAt})
		shown++
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d records", shown)})
	t.Render()
}
