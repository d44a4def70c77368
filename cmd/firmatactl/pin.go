package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/internal/pinconfig"
	"github.com/muurk/firmata/internal/ui"
	"github.com/muurk/firmata/protocol"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Direct pin control",
	Long: `Drive individual pins: set modes, write digital and analog values,
control reporting, and query live pin state.

Pin numbers are the board's digital pin numbers throughout. Analog
reporting is addressed by analog channel (the N in AN) and digital
reporting by port (pins 0-7 are port 0, 8-15 port 1, and so on).`,
}

var pinModeCmd = &cobra.Command{
	Use:   "mode <pin> <mode>",
	Short: "Set a pin's mode",
	Long: `Configure a pin into one of the protocol's modes: input, output,
analog, pwm, servo, shift, i2c, onewire, stepper, encoder, serial,
or pullup. The board ignores modes the pin does not support; check
with 'firmatactl capabilities'.`,
	Example: `  # Make pin 13 an output
  firmatactl pin mode 13 output

  # Enable the internal pull-up on pin 2
  firmatactl pin mode 2 pullup`,
	Args: cobra.ExactArgs(2),
	RunE: runPinMode,
}

var pinWriteCmd = &cobra.Command{
	Use:   "write <pin> <high|low>",
	Short: "Drive a digital output pin",
	Long: `Set a digital output pin high or low. The pin must already be in
output mode; combine with 'pin mode' if needed. Accepts high/low,
on/off, and 1/0.`,
	Example: `  # Turn the LED on pin 13 on
  firmatactl pin mode 13 output --port /dev/ttyACM0
  firmatactl pin write 13 high --port /dev/ttyACM0`,
	Args: cobra.ExactArgs(2),
	RunE: runPinWrite,
}

var pinAnalogCmd = &cobra.Command{
	Use:   "analog <pin> <value>",
	Short: "Write an analog (PWM or servo) value",
	Long: `Write an analog value to a pin in pwm or servo mode. For PWM the
value is the duty cycle (0-255 on most boards); for servo it is the
angle in degrees. Values and pins beyond the compact message range are
sent in the extended form automatically.`,
	Example: `  # Half-brightness PWM on pin 9
  firmatactl pin analog 9 128

  # Servo on pin 10 to 90 degrees
  firmatactl pin analog 10 90`,
	Args: cobra.ExactArgs(2),
	RunE: runPinAnalog,
}

var pinReportCmd = &cobra.Command{
	Use:   "report <analog|digital> <index> <on|off>",
	Short: "Enable or disable value reporting",
	Long: `Control periodic reporting. 'analog' takes an analog channel number
and makes the board stream that channel's value every sampling
interval. 'digital' takes a port number and makes the board report
the port whenever one of its pins changes.

Reports stream until disabled or the board resets; watch them with
'firmatactl monitor'.`,
	Example: `  # Stream analog channel 0
  firmatactl pin report analog 0 on

  # Stop change reports for digital port 1 (pins 8-15)
  firmatactl pin report digital 1 off`,
	Args: cobra.ExactArgs(3),
	RunE: runPinReport,
}

var pinStateCmd = &cobra.Command{
	Use:   "state <pin>",
	Short: "Query a pin's current mode and value",
	Long: `Ask the board what mode a pin is currently in and what state it last
took. For outputs the state is the driven value; for inputs it is 1
if the pull-up is enabled.`,
	Example: `  firmatactl pin state 13 --port /dev/ttyACM0`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPinState,
}

func init() {
	pinCmd.AddCommand(pinModeCmd)
	pinCmd.AddCommand(pinWriteCmd)
	pinCmd.AddCommand(pinAnalogCmd)
	pinCmd.AddCommand(pinReportCmd)
	pinCmd.AddCommand(pinStateCmd)
	rootCmd.AddCommand(pinCmd)
}

// parsePin parses a pin or port argument and checks the protocol range.
func parsePin(arg string) (int, error) {
	pin, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid pin %q: expected a number", arg)
	}
	if pin < 0 || pin > 127 {
		return 0, fmt.Errorf("pin %d out of range (0-127)", pin)
	}
	return pin, nil
}

// parseLevel parses a digital level argument.
func parseLevel(arg string) (bool, error) {
	switch arg {
	case "high", "on", "1", "true":
		return true, nil
	case "low", "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid level %q: expected high or low", arg)
}

// parseSwitch parses an on/off argument.
func parseSwitch(arg string) (bool, error) {
	switch arg {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q: expected on or off", arg)
}

func runPinMode(cmd *cobra.Command, args []string) error {
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	mode, ok := protocol.ParsePinMode(args[1])
	if !ok {
		return fmt.Errorf("unknown pin mode %q (try: input, output, analog, pwm, servo, pullup)", args[1])
	}

	return withClient(func(client *firmata.Client, target string) error {
		if err := client.SetPinMode(pin, mode); err != nil {
			return fmt.Errorf("failed to set pin mode: %w", err)
		}
		fmt.Printf("%s Pin %d set to %s on %s\n", ui.SuccessMarker, pin, mode, target)
		return nil
	})
}

func runPinWrite(cmd *cobra.Command, args []string) error {
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	high, err := parseLevel(args[1])
	if err != nil {
		return err
	}

	return withClient(func(client *firmata.Client, target string) error {
		if err := client.SetDigitalPinValue(pin, high); err != nil {
			return fmt.Errorf("failed to write pin: %w", err)
		}
		level := "low"
		if high {
			level = "high"
		}
		fmt.Printf("%s Pin %d driven %s on %s\n", ui.SuccessMarker, pin, level, target)
		return nil
	})
}

func runPinAnalog(cmd *cobra.Command, args []string) error {
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(args[1])
	if err != nil || value < 0 {
		return fmt.Errorf("invalid value %q: expected a non-negative number", args[1])
	}

	return withClient(func(client *firmata.Client, target string) error {
		if err := client.WriteAnalog(pin, value); err != nil {
			return fmt.Errorf("failed to write analog value: %w", err)
		}
		fmt.Printf("%s Pin %d analog value set to %d on %s\n", ui.SuccessMarker, pin, value, target)
		return nil
	})
}

func runPinReport(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if kind != "analog" && kind != "digital" {
		return fmt.Errorf("invalid report kind %q: expected analog or digital", kind)
	}
	index, err := parsePin(args[1])
	if err != nil {
		return err
	}
	enabled, err := parseSwitch(args[2])
	if err != nil {
		return err
	}

	return withClient(func(client *firmata.Client, target string) error {
		var what string
		if kind == "analog" {
			err = client.ReportAnalog(index, enabled)
			what = fmt.Sprintf("analog channel %d", index)
		} else {
			err = client.ReportDigital(index, enabled)
			what = fmt.Sprintf("digital port %d", index)
		}
		if err != nil {
			return fmt.Errorf("failed to change reporting: %w", err)
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("%s Reporting %s for %s on %s\n", ui.SuccessMarker, state, what, target)
		return nil
	})
}

func runPinState(cmd *cobra.Command, args []string) error {
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}

	return withClient(func(client *firmata.Client, target string) error {
		applier := pinconfig.NewApplier(client)
		applier.QueryTimeout = opTimeout

		state, err := applier.QueryPinState(pin)
		if err != nil {
			return fmt.Errorf("pin state query failed: %w", err)
		}

		fmt.Printf("Target: %s\n\n", target)
		fmt.Println(pinconfig.FormatPinStates(map[int]*protocol.PinStateResponseMessage{pin: state}))
		return nil
	})
}
