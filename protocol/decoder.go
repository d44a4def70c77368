package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const defaultReadBuffer = 256

// Decoder turns the transport's inbound byte stream into messages. One
// goroutine owns a Decoder; Next is not safe for concurrent use. Builder
// registrations on the shared Registry may still happen from other
// goroutines at any time.
type Decoder struct {
	reg     *Registry
	r       *bufio.Reader
	log     *zap.Logger
	bufSize int
}

// DecoderOption customizes a Decoder at construction.
type DecoderOption func(*Decoder)

// WithLogger routes the decoder's diagnostics (dropped bytes, skipped sysex
// envelopes) to log. The default is a no-op logger.
func WithLogger(log *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.log = log
	}
}

// WithReadBuffer sets the size of the buffer in front of the transport.
// Buffering never reads ahead of what the transport has already delivered.
func WithReadBuffer(size int) DecoderOption {
	return func(d *Decoder) {
		d.bufSize = size
	}
}

// NewDecoder returns a Decoder reading from r and resolving command bytes
// against reg.
func NewDecoder(reg *Registry, r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		reg:     reg,
		log:     zap.NewNop(),
		bufSize: defaultReadBuffer,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.r = bufio.NewReaderSize(r, d.bufSize)
	return d
}

// Next blocks until one complete message has been decoded and returns it.
//
// Bytes that resolve to no registered builder are dropped and decoding
// continues at the next byte; an unrecognized sysex sub-command skips the
// whole envelope through its closing 0xF7. Neither produces a message or an
// error, they only cost noise in the debug log.
//
// A failure inside a registered builder is different: the builder may have
// consumed a prefix of unknown length, so the command boundary is lost and
// the error (a *DecodeError) is fatal to further decoding of this stream.
// Transport errors pass through as-is; a cleanly closed stream yields io.EOF.
func (d *Decoder) Next() (Message, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == CmdStartSysex {
			msg, err := d.nextSysex()
			if err != nil {
				return nil, err
			}
			if msg == nil {
				continue
			}
			return msg, nil
		}
		fn, channel, ok := d.reg.resolveCommand(b)
		if !ok {
			d.log.Debug("dropping unrecognized byte",
				zap.String("byte", fmt.Sprintf("0x%02X", b)))
			continue
		}
		msg, err := fn(channel, d.r)
		if err != nil {
			return nil, &DecodeError{Command: b, Err: err}
		}
		return msg, nil
	}
}

// nextSysex decodes one sysex envelope. The 0xF0 marker has been consumed.
// A nil, nil return means the envelope was skipped and the stream is
// positioned after its 0xF7.
func (d *Decoder) nextSysex() (Message, error) {
	sub, err := d.r.ReadByte()
	if err != nil {
		return nil, unterminated(err)
	}
	if sub == CmdEndSysex {
		d.log.Debug("dropping empty sysex envelope")
		return nil, nil
	}
	fn, ok := d.reg.resolveSysex(sub)
	if !ok {
		d.log.Debug("skipping unrecognized sysex command",
			zap.String("command", fmt.Sprintf("0x%02X", sub)))
		if err := d.skipSysex(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	msg, err := fn(d.r)
	if err != nil {
		return nil, &DecodeError{Command: sub, Sysex: true, Err: err}
	}
	return msg, nil
}

// skipSysex discards bytes through the closing 0xF7. Required resync for
// envelopes nobody can parse; dropping only the sub-command byte would leave
// the body bytes to be misread as top-level commands.
func (d *Decoder) skipSysex() error {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return unterminated(err)
		}
		if b == CmdEndSysex {
			return nil
		}
	}
}

func unterminated(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrUnterminatedSysex
	}
	return err
}
