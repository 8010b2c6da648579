package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/spf13/cobra"
)

func addOutbox(topLevel *cobra.Command, g *globalOptions) {
	var limit int
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Show the most recent actions handed to the data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			entries, err := db.RecentActions(limit)
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(entries)
			}
			_, _ = fmt.Fprintln(color.Output, outboxTable(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of actions to show")
	topLevel.AddCommand(cmd)
}

func outboxTable(entries []store.OutboxEntry) *uitable.Table {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("SEQ"), bold.Sprint("ACTION"), bold.Sprint("LIST"), bold.Sprint("TARGETS"), bold.Sprint("STATUS"), bold.Sprint("ERROR"))
	for _, e := range entries {
		targets := make([]string, len(e.Action.Targets))
		for i, id := range e.Action.Targets {
			targets[i] = fmt.Sprint(id)
		}
		tbl.AddRow(e.Seq, e.Action.Kind, e.Action.List, strings.Join(targets, ","), statusColor(e.Status).Sprint(e.Status), e.ErrorMessage)
	}
	return tbl
}

func statusColor(status string) *color.Color {
	switch status {
	case store.StatusDone:
		return color.New(color.FgGreen)
	case store.StatusFailed:
		return color.New(color.FgRed)
	case store.StatusApplying:
		return color.New(color.FgCyan)
	}
	return color.New(color.FgYellow)
}
