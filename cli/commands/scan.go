package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/blume-tech/jetson-app/internal/core"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/blume-tech/jetson-app/internal/util"
)

// creates and returns the "scan" command
func scan() *cobra.Command {
	var targets []string
	var ports []int
	var paths []string
	var concurrency int
	var timeoutMs int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single camera scan and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			networkInfo, err := util.GetNetworkInfo()

			if err != nil {
				return err
			}

			appCore, err := util.CreateNewAppCore(networkInfo.Cidr)

			if err != nil {
				return err
			}

			defer appCore.Stop()

			appCore.TriggerScan(core.ScanOverrides{
				Targets:        targets,
				Ports:          ports,
				Paths:          paths,
				Concurrency:    concurrency,
				ProbeTimeoutMs: timeoutMs,
			})

			for !appCore.ScanStatus().State.Terminal() {
				select {
				case <-cmd.Context().Done():
					appCore.CancelScan()
					return cmd.Context().Err()
				case <-time.After(500 * time.Millisecond):
				}
			}

			status := appCore.ScanStatus()

			if status.State == discovery.ScanFailed {
				return fmt.Errorf("scan %d failed", status.ID)
			}

			cameras := appCore.Cameras()

			if jsonOutput {
				out, err := json.MarshalIndent(map[string]any{
					"scan":    status,
					"cameras": cameras,
				}, "", "  ")

				if err != nil {
					return err
				}

				fmt.Println(string(out))

				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "IP\tPORT\tPROTOCOL\tMANUFACTURER\tURL")

			for _, cam := range cameras {
				fmt.Fprintf(
					w,
					"%s\t%d\t%s\t%s\t%s\n",
					cam.Host,
					cam.Port,
					cam.Protocol,
					cam.Manufacturer,
					cam.URL,
				)
			}

			w.Flush()

			fmt.Printf(
				"\nchecked %d candidates, found %d cameras\n",
				status.CandidatesChecked,
				len(cameras),
			)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&targets, "targets", nil, "CIDRs or IPs to scan")
	cmd.Flags().IntSliceVar(&ports, "ports", nil, "ports to probe")
	cmd.Flags().StringSliceVar(&paths, "paths", nil, "stream paths to request")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max simultaneous probes")
	cmd.Flags().IntVar(&timeoutMs, "timeout", 0, "probe timeout in milliseconds")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as json")

	return cmd
}
