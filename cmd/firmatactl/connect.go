package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/internal/config"
	"github.com/muurk/firmata/internal/logging"
	"github.com/muurk/firmata/internal/urls"
	"github.com/muurk/firmata/transport"
)

// Connection flags shared by every board command.
var (
	serialPort string
	baudRate   int
	tcpAddr    string
	wsURL      string
	boardNick  string
	opTimeout  time.Duration
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serialPort, "port", "", "Serial port of the board (e.g. /dev/ttyACM0)")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", transport.DefaultBaud, "Serial baud rate")
	rootCmd.PersistentFlags().StringVar(&tcpAddr, "tcp", "", "TCP address of a network board (host:port)")
	rootCmd.PersistentFlags().StringVar(&wsURL, "ws", "", "WebSocket URL of a bridged board (ws://host:port/ws)")
	rootCmd.PersistentFlags().StringVar(&boardNick, "board", "", "Nickname of a board saved with 'config nickname'")
	rootCmd.PersistentFlags().DurationVar(&opTimeout, "timeout", 3*time.Second, "Timeout for board queries and connection attempts")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (empty = silent)")
}

// openTarget resolves the connection flags to an open byte stream and a
// human-readable description of where it leads.
//
// Precedence: an explicit --port, --tcp, or --ws wins; --board looks the
// nickname up in the configuration file; with nothing given, the default
// board from the configuration is used, falling back to the serial port
// if the machine has exactly one.
func openTarget() (io.ReadWriteCloser, string, error) {
	explicit := 0
	for _, flag := range []string{serialPort, tcpAddr, wsURL, boardNick} {
		if flag != "" {
			explicit++
		}
	}
	if explicit > 1 {
		return nil, "", fmt.Errorf("--port, --tcp, --ws and --board are mutually exclusive")
	}

	switch {
	case serialPort != "":
		return openSerialTarget(serialPort, baudRate)
	case tcpAddr != "":
		conn, err := transport.DialTCP(tcpAddr, opTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to %s: %w", tcpAddr, err)
		}
		return conn, "tcp://" + tcpAddr, nil
	case wsURL != "":
		conn, err := transport.DialWebSocket(wsURL, opTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}
		return conn, wsURL, nil
	case boardNick != "":
		return openSavedBoard(boardNick)
	}
	return openDefaultTarget()
}

func openSerialTarget(port string, baud int) (io.ReadWriteCloser, string, error) {
	cfg := transport.DefaultSerialConfig()
	if baud > 0 {
		cfg.Baud = baud
	}
	sp, err := transport.OpenSerial(port, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w (see %s)", port, err, urls.TroubleshootingGuide)
	}
	return sp, fmt.Sprintf("%s @ %d baud", port, cfg.Baud), nil
}

func openSavedBoard(nickname string) (io.ReadWriteCloser, string, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	board := registry.GetBoard(nickname)
	if board == nil {
		known := registry.Nicknames()
		if len(known) == 0 {
			return nil, "", fmt.Errorf("no board named %q; save one with 'firmatactl config nickname'", nickname)
		}
		return nil, "", fmt.Errorf("no board named %q (saved boards: %s)", nickname, strings.Join(known, ", "))
	}

	switch board.Transport {
	case config.TransportSerial:
		baud := board.Baud
		if baud == 0 {
			baud = transport.DefaultBaud
		}
		return openSerialTarget(board.Port, baud)
	case config.TransportTCP:
		conn, err := transport.DialTCP(board.Address, opTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to %s (%s): %w", nickname, board.Address, err)
		}
		return conn, fmt.Sprintf("%s (tcp://%s)", nickname, board.Address), nil
	case config.TransportWS:
		conn, err := transport.DialWebSocket(board.Address, opTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to %s (%s): %w", nickname, board.Address, err)
		}
		return conn, fmt.Sprintf("%s (%s)", nickname, board.Address), nil
	default:
		return nil, "", fmt.Errorf("board %q has unknown transport %q", nickname, board.Transport)
	}
}

// openDefaultTarget handles the no-flags case: the configured default
// board first, then a lone serial port.
func openDefaultTarget() (io.ReadWriteCloser, string, error) {
	registry, err := config.LoadRegistry()
	if err == nil && registry.Preferences != nil && registry.Preferences.DefaultBoard != "" {
		return openSavedBoard(registry.Preferences.DefaultBoard)
	}

	ports, err := transport.ListPorts()
	if err != nil {
		return nil, "", fmt.Errorf("no board specified and listing serial ports failed: %w", err)
	}
	switch len(ports) {
	case 0:
		return nil, "", fmt.Errorf("no board specified and no serial ports found; use --port, --tcp, --ws or --board (see %s)", urls.GettingStarted)
	case 1:
		fmt.Printf("Using serial port %s\n\n", ports[0])
		return openSerialTarget(ports[0], baudRate)
	default:
		return nil, "", fmt.Errorf("found %d serial ports (%s); pick one with --port", len(ports), strings.Join(ports, ", "))
	}
}

// withClient opens the resolved target, runs a protocol client on it,
// and hands both to fn. The client is stopped (and the connection
// closed) when fn returns.
func withClient(fn func(client *firmata.Client, target string) error) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	conn, target, err := openTarget()
	if err != nil {
		return err
	}

	client := firmata.New(conn, firmata.WithLogger(logging.GetLogger()))
	if err := client.Start(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to start protocol client: %w", err)
	}
	defer client.Stop()

	return fn(client, target)
}

// touchSavedBoard records a successful connection against the nickname
// used to reach the board, if any. Failures here never surface; the
// registry is a convenience, not part of the operation.
func touchSavedBoard(firmware string) {
	if boardNick == "" {
		return
	}
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.TouchBoard(boardNick, firmware)
	_ = registry.Save()
}
