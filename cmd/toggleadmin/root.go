package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "toggleadmin",
		Short: "Administer feature toggles and their activation strategies",
		Long: `toggleadmin serves an admin UI for feature toggles, edits strategy
parameters from the terminal and imports strategy definitions from OpenAPI
documents.

Configuration is read from toggleadmin.yaml (or --config), then TOGGLEADMIN_*
environment variables, then flags.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./toggleadmin.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&a.dataPath, "data", "toggles.yaml", "seed document with definitions and toggles")

	root.AddCommand(
		newServeCmd(a),
		newEditCmd(a),
		newRenderCmd(a),
		newImportCmd(a),
	)
	return root
}
