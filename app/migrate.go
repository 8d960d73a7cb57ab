package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plex-projectplanner/projectplanner/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema and seed the initial data",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig(false)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		conn, err := daemon.Migrate(&cfg)
		if err != nil {
			return err
		}

		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated")

		return nil
	},
}
