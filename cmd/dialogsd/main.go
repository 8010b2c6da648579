package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/matheus3301/dialogs/internal/daemon"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/matheus3301/dialogs/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		accountFlag string
		demo        bool
		headless    bool
	)
	cmd := &cobra.Command{
		Use:          "dialogsd",
		Short:        "Run the dialog list engine for one account.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(account.ConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			name := account.Resolve(accountFlag, cfg)
			if err := account.ValidateName(name); err != nil {
				return err
			}
			p := daemon.Params{Account: name, Config: cfg, Demo: demo}
			if headless {
				p.Stderr = true
				fx.New(daemon.Module(p)).Run()
				return nil
			}
			return runTUI(p)
		},
	}
	cmd.Flags().StringVar(&accountFlag, "account", "", "account name (overrides config default)")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed demo dialogs and simulate remote activity")
	cmd.Flags().BoolVar(&headless, "headless", false, "run without the terminal view")
	return cmd
}

// runTUI runs the daemon in-process with the terminal view on top of it.
func runTUI(p daemon.Params) error {
	var view *tui.App
	p.NewView = func(b *bus.Bus, logger *zap.Logger) daemon.View {
		view = tui.New(tui.Options{Account: p.Account, Bus: b, Logger: logger})
		return view
	}

	var db *store.DB
	app := fx.New(daemon.Module(p), fx.Populate(&db), fx.NopLogger)
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	var runErr error
	if tabs, err := tabsOf(db); err != nil {
		runErr = err
	} else {
		view.SetTabs(tabs)
		runErr = view.Run()
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	return runErr
}

// tabsOf returns the folder tabs followed by one tab per filter.
func tabsOf(db *store.DB) ([]tui.Tab, error) {
	filters, err := db.ListFilters()
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	tabs := tui.DefaultTabs()
	for _, f := range filters {
		tabs = append(tabs, tui.Tab{Title: f.Title, Key: dialog.FilterKey(f.ID)})
	}
	return tabs, nil
}
