// Package protocol implements the Firmata wire protocol codec.
//
// This package turns the byte stream coming from a Firmata board into typed
// messages and typed messages back into bytes. It knows nothing about serial
// ports or sockets; it reads from any io.Reader and produces byte slices for
// any writer. Connection handling lives in the transport package and the
// client facade in the repository root.
//
// # Wire Format
//
// Firmata frames every message with a single command byte whose high bit is
// set. Commands below 0xF0 carry a channel (a pin or port number) in the low
// nibble, so one logical command occupies a 16-byte range:
//   - 0x90-0x9F digital I/O message (channel = port)
//   - 0xC0-0xCF report analog pin (channel = pin)
//   - 0xD0-0xDF report digital port (channel = port)
//   - 0xE0-0xEF analog I/O message (channel = pin)
//
// Commands from 0xF0 upward never carry a channel. 0xF0 opens a sysex
// envelope: the next byte is a sub-command with its own value space, the body
// runs until the 0xF7 end marker.
//
// All payload bytes stay below 0x80. Eight-bit data is split into two
// seven-bit bytes (least significant first), and 14-bit values travel as two
// seven-bit bytes the same way. See EncodePair and EncodeUint14.
//
// # Decoding
//
// A Decoder pulls one message at a time from a stream, resolving command
// bytes through a Registry of builder functions:
//
//	reg := protocol.NewRegistry()
//	dec := protocol.NewDecoder(reg, port)
//	for {
//	    msg, err := dec.Next()
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(msg)
//	}
//
// Bytes that resolve to no builder are dropped and decoding resumes at the
// next byte; an unknown sysex sub-command skips the whole envelope so the
// stream stays in sync. A builder that fails mid-body leaves the stream
// position undefined, so Next returns the failure and the caller must treat
// the connection as dead.
//
// # Encoding
//
// Messages that implement Transmittable or SysexTransmittable serialize with
// Encode, which produces the complete frame or no bytes at all:
//
//	frame, err := protocol.Encode(&protocol.SetPinModeMessage{Pin: 13, Mode: protocol.PinModeOutput})
//
// # Extending The Command Set
//
// Custom commands register against a Registry before or during decoding:
//
//	reg.Register(0xA0, func(channel int, r protocol.ByteSource) (protocol.Message, error) {
//	    ...
//	})
//	reg.RegisterSysex(0x41, myBuilder)
//
// Registration is atomic with respect to concurrent decoding. Registering a
// byte twice silently replaces the earlier builder, so custom commands must
// steer clear of the reserved bytes above unless replacement is the point.
//
// # Thread Safety
//
// Codec functions and builders are stateless and safe for concurrent use.
// A Decoder is not: exactly one goroutine may call Next, because message
// boundaries only exist once the current builder has consumed its bytes.
package protocol
