package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blume-tech/jetson-app/internal/logger"
)

// creates and returns the "clean" command
func clean() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Removes the database and log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			dbFile, ok := viper.Get("database-file").(string)

			if ok && dbFile != "" {
				if err := os.RemoveAll(dbFile); err != nil {
					return err
				}
				log.Info().Msg("removed database file")
			}

			logFile, ok := viper.Get("log-file").(string)

			if ok && logFile != "" {
				if err := os.RemoveAll(logFile); err != nil {
					return err
				}
				log.Info().Msg("removed log file")
			}

			return nil
		},
	}

	return cmd
}
