package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/spf13/cobra"
)

func addList(topLevel *cobra.Command, g *globalOptions) {
	var (
		archive bool
		filter  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a dialog list as the source stores it",
		Example: `
dialogsctl list
dialogsctl list --archive
dialogsctl list --filter 1 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := dialog.FolderKey(dialog.FolderPrimary)
			switch {
			case filter > 0:
				key = dialog.FilterKey(filter)
			case archive:
				key = dialog.FolderKey(dialog.FolderArchive)
			}

			db, err := g.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ds, err := db.ListDialogs(key)
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(ds)
			}
			_, _ = fmt.Fprintln(color.Output, color.New(color.Bold, color.Underline).Sprint(key))
			_, _ = fmt.Fprintln(color.Output, dialogTable(ds, time.Now()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "show the archive folder")
	cmd.Flags().IntVar(&filter, "filter", 0, "show the filter with this id")
	topLevel.AddCommand(cmd)
}

func dialogTable(ds []dialog.Dialog, now time.Time) *uitable.Table {
	bold := color.New(color.Bold)
	pinned := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("PIN"), bold.Sprint("ID"), bold.Sprint("TITLE"), bold.Sprint("UNREAD"), bold.Sprint("ACTIVE"))
	for _, d := range ds {
		pin := ""
		if d.Pinned() {
			pin = pinned.Sprint(strconv.Itoa(d.PinnedOrder))
		}
		title := d.Title
		switch {
		case d.Synthetic():
			title = faint.Sprintf("%s [%s]", d.Title, d.Variant)
		case d.Muted:
			title = faint.Sprint(d.Title)
		}
		unread := ""
		switch {
		case d.UnreadCount > 0:
			unread = bold.Sprint(d.UnreadCount)
		case d.HasUnreadMark:
			unread = "•"
		}
		tbl.AddRow(pin, d.ID, title, unread, ago(now, d.LastActivity))
	}
	return tbl
}

func ago(now time.Time, ms int64) string {
	if ms == 0 {
		return ""
	}
	d := now.Sub(time.UnixMilli(ms)).Round(time.Minute)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
