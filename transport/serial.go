package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud is the rate StandardFirmata configures its UART for.
const DefaultBaud = 57600

// SerialConfig holds the line parameters for a serial connection.
type SerialConfig struct {
	// Baud is the line rate. Firmata firmware almost always runs the
	// default; boards with custom sketches may differ.
	Baud int

	// DataBits per character, normally 8.
	DataBits int

	// Parity for the line, normally none.
	Parity serial.Parity

	// StopBits for the line, normally one.
	StopBits serial.StopBits
}

// DefaultSerialConfig returns the 57600 8N1 parameters StandardFirmata
// ships with.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Baud:     DefaultBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the named port with the given line parameters. Reads
// block until the board sends something, which is exactly what the client's
// read loop expects.
//
// Boards that reset on port open (most Arduinos) need a moment before they
// speak; waiting for the firmware's startup report is more reliable than
// sleeping.
func OpenSerial(port string, cfg SerialConfig) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
		Parity:   cfg.Parity,
		StopBits: cfg.StopBits,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", port, err)
	}
	return p, nil
}

// ListPorts names the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}
