package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/spf13/cobra"
)

func addConfig(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	addConfigInit(cmd)
	addConfigShow(cmd)
	topLevel.AddCommand(cmd)
}

func addConfigInit(parent *cobra.Command) {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := account.ConfigPath()
			if err := initConfig(path, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "wrote %s\n", color.CyanString(path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	parent.AddCommand(cmd)
}

func initConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return config.Save(path, config.Default())
}

func addConfigShow(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(account.ConfigPath())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, color.YellowString("warning:"), err)
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
	parent.AddCommand(cmd)
}
