package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plex-projectplanner/projectplanner/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the ProjectPlanner web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig(devMode)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			go func() {
				if err := d.Start(); err != nil {
					log.Fatal().Err(err).Msg("web service failed")
				}
			}()

			d.WaitShutdown()

			return nil
		},
	}
)
