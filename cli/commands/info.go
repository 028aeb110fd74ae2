package commands

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	app_info "github.com/blume-tech/jetson-app/internal/app-info"
)

func info() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print detailed app info",
		Run: func(cmd *cobra.Command, args []string) {
			platform := "unknown"

			if hostInfo, err := host.Info(); err == nil {
				platform = fmt.Sprintf(
					"%s %s (%s)",
					hostInfo.Platform,
					hostInfo.PlatformVersion,
					hostInfo.KernelArch,
				)
			}

			fmt.Printf(
				"%s: %s\nplatform: %s\ndatabase: %v\nlogs: %v\n",
				app_info.NAME,
				app_info.VERSION,
				platform,
				viper.Get("database-file"),
				viper.Get("log-file"),
			)
		},
	}

	return cmd
}
