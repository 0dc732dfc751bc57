package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindflow-app/mindflow-BE/internal/client/config"
)

func configCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(configInitCmd(g), configShowCmd(g))
	return cmd
}

func configInitCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, path, err := config.Paths()
			if err != nil {
				return err
			}
			if g.configPath != "" {
				path = g.configPath
			}
			cfg := config.Default(baseDir)
			if g.apiURL != "" {
				cfg.APIURL = g.apiURL
			}
			if g.dataDir != "" {
				cfg.DataDir = g.dataDir
			}
			if err := config.Init(path, cfg); err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Data dir: %s\n", cfg.DataDir)
			return nil
		},
	}
}

func configShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
}
