package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"media-browser/internal/filesystem"
	"media-browser/internal/metrics"
	"media-browser/internal/startup"
)

// app carries state shared by subcommands.
type app struct {
	v        *viper.Viper
	settings *startup.Settings
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: startup.NewViper()}

	root := &cobra.Command{
		Use:           "media-browser",
		Short:         "Browse media roots with cached thumbnails and metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := startup.LoadSettings(a.v)
			if err != nil {
				return err
			}
			a.settings = settings

			metrics.InitializeMetrics()
			filesystem.SetObserver(metrics.NewFilesystemObserver())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Roots config file")
	flags.String("settings", "", "Process settings file (yaml, json or toml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("enrich-command", "", "External enrichment service executable")
	_ = a.v.BindPFlag(startup.KeyConfigFile, flags.Lookup("config"))
	_ = a.v.BindPFlag(startup.KeySettingsFile, flags.Lookup("settings"))
	_ = a.v.BindPFlag(startup.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(startup.KeyEnrichCommand, flags.Lookup("enrich-command"))

	root.AddCommand(
		newScanCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}
