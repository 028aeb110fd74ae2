package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/blume-tech/jetson-app/internal/api"
	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/util"
)

// serve runs the discovery engine, telemetry poller, and http api
// until interrupted
func serve(ctx context.Context) error {
	log := logger.New()

	networkInfo, err := util.GetNetworkInfo()

	if err != nil {
		return err
	}

	appCore, err := util.CreateNewAppCore(networkInfo.Cidr)

	if err != nil {
		return err
	}

	defer appCore.Stop()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	defer stop()

	appCore.StartDaemon()

	log.Info().
		Str("config", appCore.Conf().Name).
		Strs("targets", appCore.Conf().Targets).
		Msg("starting device server")

	server := api.NewServer(appCore.Conf().API, appCore)

	return server.Run(ctx)
}
