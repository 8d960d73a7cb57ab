// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/logger"
)

const defaultConfigPath = "./etc"

var (
	configPath string        // directory holding main.toml
	cfg        config.Config //nolint:gochecknoglobals
)

var rootCmd = &cobra.Command{
	Use:   "projectplanner",
	Short: "ProjectPlanner serves tenant scoped application settings",
	Long: `ProjectPlanner is the api of the project planner application.
It stores application settings per tenant and exposes them through a JSON api.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"directory containing main.toml")
}

// loadConfig reads the configuration and initializes the logger.
func loadConfig(devMode bool) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
