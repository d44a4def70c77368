// Firmata-bridge exposes a serial-attached Firmata board to the network.
//
// It relays the raw protocol byte stream between a local serial port and
// network clients, over plain TCP and over WebSocket, without parsing it.
// Any client that speaks the wire format works through the bridge, so a
// board plugged into one machine can be driven from another with
// firmatactl or any other Firmata client.
//
// Usage:
//
//	firmata-bridge serve [flags]
//
// See 'firmata-bridge serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata/internal/bridge"
	"github.com/muurk/firmata/internal/version"
	"github.com/muurk/firmata/transport"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "firmata-bridge",
	Short: "Firmata Serial-to-Network Bridge",
	Long: `A bridge that exposes a serial-attached Firmata board to the network.

The bridge opens the board's serial port and relays the raw byte stream
to network clients over plain TCP and over WebSocket. The stream is not
parsed or altered, so any Firmata client works through it.

The board link carries a single conversation, so one client is attached
at a time; a newly connecting client takes over from the current one.
Board bytes that arrive while no client is attached are dropped.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	serialPort string
	baudRate   int
	listenAddr string
	wsListen   string
	announce   bool
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge",
	Long: `Open the board's serial port and start serving it to the network.

With no --port flag the bridge uses the serial port if the machine has
exactly one. Either listener can be disabled by setting its address to
an empty string; at least one must stay enabled.

Unless disabled with --announce=false, the TCP listener is advertised
over mDNS so 'firmatactl scan' finds the bridge from other machines.

A /status endpoint on the WebSocket listener reports the attached
client and relay byte counters as JSON.`,
	Example: `  # Serve the only attached board on the default ports
  firmata-bridge serve

  # Serve a specific port, TCP only
  firmata-bridge serve --port /dev/ttyACM0 --ws-listen ""

  # Custom addresses with debug logging
  firmata-bridge serve --port /dev/ttyUSB0 --listen :4030 --ws-listen :4031 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serialPort, "port", "", "Serial port of the board (auto-detected if exactly one exists)")
	serveCmd.Flags().IntVar(&baudRate, "baud", transport.DefaultBaud, "Serial baud rate")
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":3030", "TCP listen address for raw byte-stream clients (empty disables)")
	serveCmd.Flags().StringVar(&wsListen, "ws-listen", ":3031", "HTTP listen address for the /ws endpoint (empty disables)")
	serveCmd.Flags().BoolVar(&announce, "announce", true, "Advertise the TCP listener over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := serialPort
	if port == "" {
		ports, err := transport.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %w", err)
		}
		switch len(ports) {
		case 0:
			return fmt.Errorf("no serial ports found; connect a board or use --port")
		case 1:
			port = ports[0]
			fmt.Printf("Using serial port %s\n", port)
		default:
			return fmt.Errorf("found %d serial ports (%s); pick one with --port", len(ports), strings.Join(ports, ", "))
		}
	}

	cfg := transport.DefaultSerialConfig()
	if baudRate > 0 {
		cfg.Baud = baudRate
	}
	board, err := transport.OpenSerial(port, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", port, err)
	}

	b, err := bridge.New(board, &bridge.Config{
		Listen:    listenAddr,
		WSListen:  wsListen,
		BoardName: port,
		Announce:  announce,
		LogLevel:  logLevel,
	})
	if err != nil {
		_ = board.Close()
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	return b.Run()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("firmata-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
