package protocol

import "fmt"

// Top-level command bytes (firmata/protocol v2.x)
const (
	CmdDigitalMessage     = 0x90 // two-byte port bitmask, channel = port
	CmdReportAnalog       = 0xC0 // one-byte enable flag, channel = pin
	CmdReportDigital      = 0xD0 // one-byte enable flag, channel = port
	CmdAnalogMessage      = 0xE0 // two-byte 14-bit reading, channel = pin
	CmdStartSysex         = 0xF0 // opens an extended-command envelope
	CmdSetPinMode         = 0xF4 // pin number + mode byte
	CmdSetDigitalPinValue = 0xF5 // pin number + value byte
	CmdEndSysex           = 0xF7 // closes an extended-command envelope
	CmdProtocolVersion    = 0xF9 // major + minor version bytes (bare byte = query)
	CmdSystemReset        = 0xFF // no body
)

// Sysex sub-command bytes. These live inside the 0xF0..0xF7 envelope and do
// not collide with top-level commands.
const (
	SysexAnalogMappingQuery    = 0x69
	SysexAnalogMappingResponse = 0x6A
	SysexCapabilityQuery       = 0x6B
	SysexCapabilityResponse    = 0x6C
	SysexPinStateQuery         = 0x6D
	SysexPinStateResponse      = 0x6E
	SysexExtendedAnalog        = 0x6F
	SysexStringData            = 0x71
	SysexReportFirmware        = 0x79
	SysexSamplingInterval      = 0x7A
)

// Channel masking. Commands below 0xF0 embed a channel number in the low
// nibble; 0xF0 and above never do.
const (
	commandMask = 0xF0 // strips the channel nibble
	channelMask = 0x0F // keeps the channel nibble
)

// NoChannel is the channel value passed to builders for commands that do not
// carry one, and the filter value that matches every channel when registering
// listeners.
const NoChannel = -1

// MaxChannel is the largest channel a command byte's low nibble can carry.
// Pins and ports beyond it need the sysex forms.
const MaxChannel = 15

// MaxUint14 is the largest value one Firmata byte pair can carry.
const MaxUint14 = 0x3FFF

// 0x7F is overloaded by two sysex bodies: a capability response uses it to
// terminate one pin's mode list, an analog mapping response to mark a pin
// with no analog channel.
const (
	capabilitySeparator = 0x7F
	analogMappingNone   = 0x7F
)

// PinMode is a pin configuration value as used by SetPinMode and reported in
// capability and pin-state responses.
type PinMode byte

// Pin modes defined by the protocol.
const (
	PinModeInput   PinMode = 0x00
	PinModeOutput  PinMode = 0x01
	PinModeAnalog  PinMode = 0x02
	PinModePWM     PinMode = 0x03
	PinModeServo   PinMode = 0x04
	PinModeShift   PinMode = 0x05
	PinModeI2C     PinMode = 0x06
	PinModeOnewire PinMode = 0x07
	PinModeStepper PinMode = 0x08
	PinModeEncoder PinMode = 0x09
	PinModeSerial  PinMode = 0x0A
	PinModePullup  PinMode = 0x0B
)

// String returns the protocol name for the mode.
func (m PinMode) String() string {
	switch m {
	case PinModeInput:
		return "input"
	case PinModeOutput:
		return "output"
	case PinModeAnalog:
		return "analog"
	case PinModePWM:
		return "pwm"
	case PinModeServo:
		return "servo"
	case PinModeShift:
		return "shift"
	case PinModeI2C:
		return "i2c"
	case PinModeOnewire:
		return "onewire"
	case PinModeStepper:
		return "stepper"
	case PinModeEncoder:
		return "encoder"
	case PinModeSerial:
		return "serial"
	case PinModePullup:
		return "pullup"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(m))
	}
}

// ParsePinMode maps a mode name (as printed by String) back to its value.
// Unknown names return false.
func ParsePinMode(name string) (PinMode, bool) {
	for m := PinModeInput; m <= PinModePullup; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}
