package main

import (
	"github.com/spf13/cobra"
)

var Version = "dev"

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "mindflow",
		Short:         "Mindflow client: log wellness records locally and sync them to the API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mindflow/config.toml)")
	root.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "override api_url from the config file")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "override data_dir from the config file")

	root.AddCommand(
		stressCmd(g),
		breathingCmd(g),
		meditationCmd(g),
		videoProgressCmd(g),
		syncCmd(g),
		migrateCmd(g),
		statusCmd(g),
		exportCmd(g),
		configCmd(g),
	)
	return root
}
