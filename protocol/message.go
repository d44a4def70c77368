package protocol

import "io"

// Message is one decoded or buildable Firmata message. Implementations are
// plain value types; a decoded message is immutable once returned from the
// decoder.
type Message interface {
	// MessageKind reports the routing identity of the message.
	MessageKind() Kind

	// String renders the message for logs and diagnostics.
	String() string
}

// Channeled is implemented by messages that carry a channel (a pin number or
// digital port) in the low nibble of their command byte. Messages without a
// channel do not implement the interface.
type Channeled interface {
	Message

	// Channel reports the channel the message addresses.
	Channel() int
}

// Transmittable is implemented by messages that can be serialized as a
// top-level command frame. The encoder emits the command byte, with the
// channel folded into the low nibble when the message is also Channeled,
// followed by the marshalled body verbatim.
type Transmittable interface {
	Message

	// Command reports the base command byte for the message. For
	// channel-bearing commands this is the low-nibble-zero form; the
	// encoder merges the channel in.
	Command() byte

	// MarshalBody renders the payload that follows the command byte.
	// Top-level bodies carry data bytes only, each below 0x80.
	MarshalBody() ([]byte, error)
}

// SysexTransmittable is implemented by messages that serialize inside a sysex
// envelope. The encoder wraps the marshalled body as
// 0xF0 <sysex command> <body> 0xF7 and rejects bodies containing any byte
// with the high bit set.
type SysexTransmittable interface {
	Message

	// SysexCommand reports the sub-command byte that follows 0xF0.
	SysexCommand() byte

	// MarshalBody renders the envelope payload. An empty body is valid.
	MarshalBody() ([]byte, error)
}

// ByteSource is the stream handed to builders. Builders consume exactly the
// bytes their message occupies and nothing more; sysex builders additionally
// consume the trailing 0xF7.
type ByteSource interface {
	io.Reader
	io.ByteReader
}

// BuildFunc parses the body of a top-level command. The command byte itself
// has already been consumed; channel is the value of its low nibble for
// channel-bearing commands and NoChannel otherwise. The builder must read
// exactly the body bytes of its message from r.
type BuildFunc func(channel int, r ByteSource) (Message, error)

// SysexBuildFunc parses the body of a sysex message. The 0xF0 marker and the
// sub-command byte have already been consumed; the builder must read through
// and including the terminating 0xF7.
type SysexBuildFunc func(r ByteSource) (Message, error)
