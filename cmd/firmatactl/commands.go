package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/internal/discovery"
	"github.com/muurk/firmata/internal/pinconfig"
	"github.com/muurk/firmata/internal/ui"
	"github.com/muurk/firmata/internal/urls"
	"github.com/muurk/firmata/protocol"
	"github.com/muurk/firmata/transport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports on this machine",
	Long: `List the serial ports present on this machine.

Boards attached over USB usually show up as /dev/ttyACM* or /dev/ttyUSB*
on Linux, /dev/cu.usbmodem* on macOS, and COM* on Windows.`,
	Example: `  firmatactl ports`,
	RunE:    runPorts,
}

var scanTimeout int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover Firmata boards on the local network",
	Long: `Scan the local network for Firmata boards using mDNS discovery.

Network boards (WiFi Firmata sketches, or serial boards exposed through
firmata-bridge) announce themselves as _arduino._tcp services. The scan
listens for those announcements and prints each board it hears from.`,
	Example: `  # Scan with the default timeout
  firmatactl scan

  # Scan for 30 seconds
  firmatactl scan --timeout 30`,
	RunE: runScan,
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Identify the board's firmware",
	Long: `Query the board for its firmware name and version, and for the wire
protocol version it speaks.

This is the quickest way to confirm a connection works end to end: if
the board answers, the transport, baud rate, and sketch are all right.`,
	Example: `  # Identify the board on a serial port
  firmatactl firmware --port /dev/ttyACM0

  # Identify a board behind firmata-bridge
  firmatactl firmware --ws ws://bench-pi.local:3031/ws`,
	RunE: runFirmware,
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show the board's pin capabilities",
	Long: `Query the board for its full pin inventory: which modes each pin
supports at what resolution, and how analog channels map to pins.`,
	Example: `  firmatactl capabilities --port /dev/ttyACM0`,
	RunE:    runCapabilities,
}

var samplingCmd = &cobra.Command{
	Use:   "sampling <milliseconds>",
	Short: "Set the analog sampling interval",
	Long: `Set how often the board sweeps its enabled analog pins and reports
their values, in milliseconds. StandardFirmata defaults to 19ms.`,
	Example: `  # Report analog values every 100ms
  firmatactl sampling 100 --port /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	RunE: runSampling,
}

var stringCmd = &cobra.Command{
	Use:   "string <text>",
	Short: "Send a text string to the board",
	Long: `Send free-form text to the board's string handler. What the board does
with it is up to the sketch; StandardFirmata ignores incoming strings.`,
	Example: `  firmatactl string "hello board" --port /dev/ttyACM0`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runString,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the board to its power-up state",
	Long: `Send a system reset to the board. Pin modes, output values, reporting,
and the sampling interval all revert to the sketch's defaults.`,
	Example: `  firmatactl reset --port /dev/ttyACM0`,
	RunE:    runReset,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")

	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(firmwareCmd)
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(samplingCmd)
	rootCmd.AddCommand(stringCmd)
	rootCmd.AddCommand(resetCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println()
		fmt.Println("Troubleshooting:")
		fmt.Println("  1. Check the USB cable (charge-only cables have no data lines)")
		fmt.Println("  2. On Linux, make sure your user is in the dialout or uucp group")
		fmt.Printf("  3. See %s\n", urls.TroubleshootingGuide)
		return nil
	}

	fmt.Printf("Found %d serial port(s):\n\n", len(ports))
	for i, port := range ports {
		fmt.Printf("%d. %s\n", i+1, port)
	}
	fmt.Println()
	fmt.Println("Use 'firmatactl firmware --port <port>' to identify the board on a port")
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Firmata boards (timeout: %ds)...\n\n", scanTimeout)

	boards, err := discovery.ScanForBoards(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(boards) == 0 {
		fmt.Println("No boards found on the network.")
		fmt.Println()
		fmt.Println("Troubleshooting:")
		fmt.Println("  1. Make sure the board (or its bridge) is powered and on this network")
		fmt.Println("  2. Some networks block mDNS; try the board's address directly with --tcp")
		fmt.Printf("  3. See %s\n", urls.NetworkBoards)
		return nil
	}

	fmt.Printf("Found %d board(s):\n\n", len(boards))
	for i, board := range boards {
		fmt.Printf("%d. %s\n", i+1, board.Name)
		fmt.Printf("   Address: %s\n", board.Addr())
		if fw := board.GetMetadata("fw_name"); fw != "" {
			fmt.Printf("   Firmware: %s\n", fw)
		}
		fmt.Println()
	}
	fmt.Println("Use 'firmatactl firmware --tcp <address>' to identify a board")
	fmt.Println("Use 'firmatactl config nickname <name> --tcp <address>' to save one")
	return nil
}

func runFirmware(cmd *cobra.Command, args []string) error {
	return withClient(func(client *firmata.Client, target string) error {
		printer := ui.NewPrinter(nil)
		printer.PrintHeader("Board Identity", "firmatactl firmware", map[string]string{
			"Target": target,
		})

		reply, err := client.Request(&protocol.ReportFirmwareMessage{}, protocol.KindReportFirmware, opTimeout, nil)
		if err != nil {
			printer.PrintError("Firmware query failed", err, []string{
				"Wait a couple of seconds after plugging in; many boards reset when the port opens",
				"Check the board runs a Firmata sketch: " + urls.StandardFirmata,
				fmt.Sprintf("Verify the baud rate matches the sketch (StandardFirmata uses %d)", transport.DefaultBaud),
			})
			return fmt.Errorf("firmware query failed: %w", err)
		}
		fw := reply.(*protocol.ReportFirmwareMessage)

		details := map[string]string{
			"Firmware": fmt.Sprintf("%s %d.%d", fw.Name, fw.Major, fw.Minor),
		}
		if reply, err := client.Request(&protocol.ProtocolVersionQueryMessage{}, protocol.KindProtocolVersion, opTimeout, nil); err == nil {
			ver := reply.(*protocol.ProtocolVersionMessage)
			details["Protocol"] = fmt.Sprintf("%d.%d", ver.Major, ver.Minor)
		}
		printer.PrintSuccess("Board identified", details)

		touchSavedBoard(fw.Name)
		return nil
	})
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	return withClient(func(client *firmata.Client, target string) error {
		applier := pinconfig.NewApplier(client)
		applier.QueryTimeout = opTimeout

		fmt.Printf("Target: %s\n\n", target)

		caps, err := applier.QueryCapabilities()
		if err != nil {
			return fmt.Errorf("capability query failed: %w", err)
		}
		fmt.Println(pinconfig.FormatCapabilities(caps))

		mapping, err := applier.QueryAnalogMapping()
		if err != nil {
			fmt.Printf("Analog mapping query failed: %v\n", err)
			return nil
		}
		fmt.Println(pinconfig.FormatAnalogMapping(mapping))

		touchSavedBoard("")
		return nil
	})
}

func runSampling(cmd *cobra.Command, args []string) error {
	millis, err := strconv.Atoi(args[0])
	if err != nil || millis < 0 {
		return fmt.Errorf("invalid sampling interval %q: expected a non-negative number of milliseconds", args[0])
	}

	return withClient(func(client *firmata.Client, target string) error {
		if err := client.SetSamplingInterval(time.Duration(millis) * time.Millisecond); err != nil {
			return fmt.Errorf("failed to set sampling interval: %w", err)
		}
		fmt.Printf("%s Sampling interval set to %dms on %s\n", ui.SuccessMarker, millis, target)
		return nil
	})
}

func runString(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	return withClient(func(client *firmata.Client, target string) error {
		if err := client.SendString(text); err != nil {
			return fmt.Errorf("failed to send string: %w", err)
		}
		fmt.Printf("%s Sent %q to %s\n", ui.SuccessMarker, text, target)
		return nil
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return withClient(func(client *firmata.Client, target string) error {
		if err := client.Reset(); err != nil {
			return fmt.Errorf("failed to reset board: %w", err)
		}
		fmt.Printf("%s Reset sent to %s\n", ui.SuccessMarker, target)
		return nil
	})
}
