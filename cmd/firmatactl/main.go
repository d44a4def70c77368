// Firmatactl is a command line tool for working with Firmata boards.
//
// It speaks the Firmata wire protocol over a serial port, a raw TCP
// connection, or a WebSocket stream, and provides commands for listing
// serial ports, discovering network boards, identifying firmware,
// inspecting pin capabilities, driving pins directly, applying YAML pin
// profiles, and watching pin activity live in a terminal dashboard.
//
// Usage:
//
//	firmatactl [command] [flags]
//
// Run 'firmatactl --help' for the full command list.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "firmatactl",
	Short: "Firmata Board Control Utility",
	Long: `A command line tool for working with Firmata boards.

Connects to a board over a serial port, raw TCP, or WebSocket and
provides board discovery, firmware and capability inspection, direct
pin control, YAML pin profiles, and a live pin monitor.

Every board command shares the same connection flags: pick a transport
with --port (serial), --tcp, or --ws, or use --board to reach a board
saved in the configuration file. With no flags at all, firmatactl uses
the configured default board, or the serial port if exactly one exists.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("firmatactl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
