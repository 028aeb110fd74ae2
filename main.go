package main

import (
	"context"
	"errors"
	"os"
	"path"

	"github.com/spf13/viper"

	"github.com/blume-tech/jetson-app/cli/commands"
	app_info "github.com/blume-tech/jetson-app/internal/app-info"
	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/ui"
)

/**
 * Main entry point for all commands
 * Here we setup environment config via viper
 */

func setRunTimeConfig() error {
	userHomeDir, err := os.UserHomeDir()

	if err != nil {
		return err
	}

	configDir := path.Join(userHomeDir, ".config", app_info.NAME)

	if err := os.MkdirAll(configDir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	logFile := path.Join(configDir, app_info.NAME+".log")

	dbFile := path.Join(configDir, app_info.NAME+".db")

	// share run-time config globally using viper
	viper.Set("log-file", logFile)
	viper.Set("config-dir", configDir)
	viper.Set("database-file", dbFile)

	return nil
}

// Entry point for the cli
func main() {
	log := logger.New()

	err := setRunTimeConfig()

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	appUI := ui.NewUI()

	// Get the "root" cobra cli command
	cmd := commands.Root(&commands.CommandProps{
		UI: appUI,
	})

	// execute the cobra command and exit with error code if necessary
	err = cmd.ExecuteContext(context.Background())

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
