package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata/internal/config"
	"github.com/muurk/firmata/transport"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved boards",
	Long: `Manage the board registry in the configuration file.

Saved boards get a nickname that any command accepts via --board, so a
connection like 'ws://bench-pi.local:3031/ws' becomes 'firmatactl
firmware --board bench'. One board can be marked as the default; it is
used when no connection flags are given at all.`,
}

var nicknameDefault bool

var configNicknameCmd = &cobra.Command{
	Use:   "nickname <name>",
	Short: "Save a board under a nickname",
	Long: `Save the board described by the connection flags under a nickname.
Exactly one of --port, --tcp, or --ws chooses the transport. Saving an
existing nickname overwrites it.`,
	Example: `  # Save a serial board
  firmatactl config nickname uno --port /dev/ttyACM0

  # Save a bridged board and make it the default
  firmatactl config nickname bench --ws ws://bench-pi.local:3031/ws --default`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigNickname,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved boards",
	Example: `  firmatactl config list`,
	RunE:    runConfigList,
}

var configRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Short:   "Remove a saved board",
	Example: `  firmatactl config remove uno`,
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigRemove,
}

func init() {
	configNicknameCmd.Flags().BoolVar(&nicknameDefault, "default", false, "Make this board the default")

	configCmd.AddCommand(configNicknameCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigNickname(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch {
	case serialPort != "":
		registry.SetSerialBoard(name, serialPort, baudRate)
	case tcpAddr != "":
		registry.SetNetworkBoard(name, config.TransportTCP, tcpAddr)
	case wsURL != "":
		registry.SetNetworkBoard(name, config.TransportWS, wsURL)
	default:
		return fmt.Errorf("describe the board with --port, --tcp or --ws")
	}

	if nicknameDefault {
		if registry.Preferences == nil {
			registry.Preferences = &config.Preferences{}
		}
		registry.Preferences.DefaultBoard = name
	}

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Saved board %q (%s)\n", name, describeBoard(registry.GetBoard(name)))
	if nicknameDefault {
		fmt.Printf("%q is now the default board\n", name)
	}
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	names := registry.Nicknames()
	if len(names) == 0 {
		fmt.Println("No saved boards.")
		fmt.Println()
		fmt.Println("Save one with 'firmatactl config nickname <name> --port <port>'")
		return nil
	}

	defaultBoard := ""
	if registry.Preferences != nil {
		defaultBoard = registry.Preferences.DefaultBoard
	}

	fmt.Printf("Saved boards (%d):\n\n", len(names))
	for _, name := range names {
		board := registry.GetBoard(name)
		marker := " "
		if name == defaultBoard {
			marker = "*"
		}
		fmt.Printf("%s %-16s %s\n", marker, name, describeBoard(board))
		if board.Firmware != "" {
			fmt.Printf("  %-16s firmware: %s\n", "", board.Firmware)
		}
		if !board.LastSeen.IsZero() {
			fmt.Printf("  %-16s last seen: %s\n", "", board.LastSeen.Format("2006-01-02 15:04"))
		}
	}
	if defaultBoard != "" {
		fmt.Println()
		fmt.Printf("* default board, used when no connection flags are given\n")
	}
	return nil
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !registry.RemoveBoard(name) {
		return fmt.Errorf("no board named %q", name)
	}
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Removed board %q\n", name)
	return nil
}

// describeBoard renders a one-line connection summary for a saved board.
func describeBoard(board *config.Board) string {
	switch board.Transport {
	case config.TransportSerial:
		baud := board.Baud
		if baud == 0 {
			baud = transport.DefaultBaud
		}
		return fmt.Sprintf("serial %s @ %d baud", board.Port, baud)
	case config.TransportTCP:
		return "tcp://" + board.Address
	case config.TransportWS:
		return board.Address
	default:
		return board.Transport
	}
}
