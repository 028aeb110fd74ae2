package ui

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/util"
)

var originalStdout = os.Stdout
var originalStderr = os.Stderr

func restoreStdout() {
	os.Stdout = originalStdout
	os.Stderr = originalStderr
}

type UI struct {
	view *view
}

func NewUI() *UI {
	return &UI{}
}

func (u *UI) Launch() error {
	log := logger.New()

	level := zerolog.GlobalLevel()

	// stdout belongs to the terminal app while it runs so logs have to
	// go to a file
	if level != zerolog.Disabled {
		logFile, ok := viper.Get("log-file").(string)

		if !ok || logFile == "" {
			log.Error().Err(
				fmt.Errorf("invalid log file path: %s", logFile),
			).Msg("disabling logs")
			zerolog.SetGlobalLevel(zerolog.Disabled)
		} else {
			if err := logger.GlobalSetLogFile(logFile); err != nil {
				log.Error().Err(err).Msg("disabling logs")
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}
		}
	}

	networkInfo, err := util.GetNetworkInfo()

	if err != nil {
		log.Fatal().Err(err).Msg("failed to get default network info")
	}

	appCore, err := util.CreateNewAppCore(networkInfo.Cidr)

	if err != nil {
		log.Fatal().Err(err).Msg("failed to create app core")
	}

	u.view = newView(networkInfo.UserIP.String(), appCore)

	os.Stdout, _ = os.Open(os.DevNull)
	os.Stderr, _ = os.Open(os.DevNull)

	defer restoreStdout()

	return u.view.run()
}
