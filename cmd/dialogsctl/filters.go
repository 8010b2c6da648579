package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/spf13/cobra"
)

type filterRow struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Pinned  int    `json:"pinned"`
	Entries int    `json:"entries"`
}

func addFilters(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the account's filter tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			fs, err := db.ListFilters()
			if err != nil {
				return err
			}
			rows := make([]filterRow, 0, len(fs))
			for _, f := range fs {
				pinned, err := db.PinnedCount(dialog.FilterKey(f.ID))
				if err != nil {
					return err
				}
				entries, err := db.FilterEntries(f.ID)
				if err != nil {
					return err
				}
				rows = append(rows, filterRow{ID: f.ID, Title: f.Title, Pinned: pinned, Entries: entries})
			}
			if g.json {
				return outputJSON(rows)
			}
			_, _ = fmt.Fprintln(color.Output, filterTable(rows))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func filterTable(rows []filterRow) *uitable.Table {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("TITLE"), bold.Sprint("PINNED"), bold.Sprint("ENTRIES"))
	for _, r := range rows {
		tbl.AddRow(r.ID, r.Title, r.Pinned, r.Entries)
	}
	return tbl
}
