package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	account string
	json    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "dialogsctl",
		Short:         "Inspect a dialogs account and its daemon.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&g.account, "account", "", "account name (overrides config default)")
	cmd.PersistentFlags().BoolVar(&g.json, "json", false, "output in JSON format")

	addHealth(cmd, g)
	addList(cmd, g)
	addFilters(cmd, g)
	addOutbox(cmd, g)
	addConfig(cmd)
	return cmd
}

// paths resolves the account the command works on.
func (g *globalOptions) paths() (account.Paths, error) {
	cfg, err := config.LoadOrDefault(account.ConfigPath())
	if err != nil {
		return account.Paths{}, fmt.Errorf("load config: %w", err)
	}
	name := account.Resolve(g.account, cfg)
	if err := account.ValidateName(name); err != nil {
		return account.Paths{}, err
	}
	return account.For(name), nil
}

// openStore opens the account's database read-only; the daemon may be running.
func (g *globalOptions) openStore() (*store.DB, error) {
	p, err := g.paths()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(p.DB()); err != nil {
		return nil, fmt.Errorf("no database for account %q: %w", p.Name, err)
	}
	return store.OpenReadOnly(p.DB())
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
