package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the codec and the encoder. Callers match them
// with errors.Is.
var (
	// ErrNotTransmittable reports an attempt to encode a message that
	// implements neither Transmittable nor SysexTransmittable.
	ErrNotTransmittable = errors.New("protocol: message is not transmittable")

	// ErrValueOutOfRange reports a value that does not fit the 14-bit
	// range of a Firmata byte pair.
	ErrValueOutOfRange = errors.New("protocol: value out of 14-bit range")

	// ErrNotSevenBitClean reports a payload byte with the high bit set
	// where only data bytes are allowed.
	ErrNotSevenBitClean = errors.New("protocol: payload byte has high bit set")

	// ErrOddPairLength reports a paired payload with an odd byte count.
	ErrOddPairLength = errors.New("protocol: odd number of payload bytes")

	// ErrUnterminatedSysex reports a stream that ended inside a sysex
	// envelope before the closing 0xF7.
	ErrUnterminatedSysex = errors.New("protocol: unterminated sysex message")

	// ErrMalformedBody reports a message body that violates its format.
	ErrMalformedBody = errors.New("protocol: malformed message body")

	// ErrChannelOutOfRange reports a channel outside 0..15.
	ErrChannelOutOfRange = errors.New("protocol: channel out of range")
)

// DecodeError wraps a builder failure with the command byte being parsed at
// the time. Builder failures are fatal to the stream: once a registered
// builder has consumed an unknown number of bytes the decoder can no longer
// find the next command boundary.
type DecodeError struct {
	// Command is the command byte whose builder failed. For sysex
	// messages it is the sub-command byte inside the envelope.
	Command byte

	// Sysex reports whether Command is a sysex sub-command.
	Sysex bool

	// Err is the builder's error.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Sysex {
		return fmt.Sprintf("protocol: decoding sysex command 0x%02X: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("protocol: decoding command 0x%02X: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
