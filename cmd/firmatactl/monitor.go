package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/internal/ui"
)

var (
	monitorChannels int
	monitorPorts    int
	monitorSampling time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch pin activity live",
	Long: `Open a full-screen dashboard showing live pin activity: analog values
with level gauges, digital port states bit by bit, the board's firmware
identity, and any text the board sends.

Analog and digital reporting are switched on for the configured
channels and ports when the monitor starts, and can be toggled from
the keyboard while it runs.

Keys:
  a      toggle analog reporting
  d      toggle digital reporting
  ?      expand help
  q      quit`,
	Example: `  # Monitor the board on a serial port
  firmatactl monitor --port /dev/ttyACM0

  # Monitor a bridged board, analog channels 0-3 only, slower sweep
  firmatactl monitor --ws ws://bench-pi.local:3031/ws --channels 4 --sampling 100ms`,
	RunE: runMonitorCmd,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorChannels, "channels", 8, "Analog channels to report (0 through N-1)")
	monitorCmd.Flags().IntVar(&monitorPorts, "digital-ports", 3, "Digital ports to report (0 through N-1)")
	monitorCmd.Flags().DurationVar(&monitorSampling, "sampling", 0, "Sampling interval override (e.g. 50ms, 0 = board default)")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitorCmd(cmd *cobra.Command, args []string) error {
	return withClient(func(client *firmata.Client, target string) error {
		touchSavedBoard("")
		return ui.RunMonitor(client, ui.MonitorOptions{
			Target:           target,
			AnalogChannels:   monitorChannels,
			DigitalPorts:     monitorPorts,
			SamplingInterval: monitorSampling,
		})
	})
}
