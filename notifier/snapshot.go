/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notifier

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/suparena/stockwatch/pickup"
)

const codeFence = "```"

// SnapshotTable renders the entries that are currently available as a plain-text table.
// It returns "" when nothing is available.
func SnapshotTable(entries []pickup.StoreEntry) string {
	var rows []pickup.StoreEntry
	for _, e := range entries {
		if e.IsAvailable() {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].StoreName < rows[j].StoreName
	})

	t := table.NewWriter()
	t.SetTitle("Available now")
	t.AppendHeader(table.Row{"Model", "Store", "ZIP", "Pickup"})
	for _, e := range rows {
		t.AppendRow(table.Row{e.Model, e.StoreName, e.PostalCode, e.Quote})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// snapshotMessages wraps a rendered table in Markdown code blocks, each within limit code units.
func snapshotMessages(rendered string, limit int) []string {
	if rendered == "" {
		return nil
	}
	overhead := 2*TextLen(codeFence) + 2
	inner := limit - overhead
	if inner <= 0 {
		return SplitText(rendered, limit)
	}

	var out []string
	for _, piece := range SplitText(rendered, inner) {
		piece = strings.TrimRight(piece, "\n")
		out = append(out, codeFence+"\n"+piece+"\n"+codeFence)
	}
	return out
}
