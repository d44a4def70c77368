package protocol

import "fmt"

// Encode serializes m into the exact byte sequence to hand to the transport.
//
// Messages implementing SysexTransmittable are wrapped in an envelope:
// 0xF0, the sub-command byte, the marshalled body, 0xF7. Messages
// implementing Transmittable are emitted as their command byte followed by
// the marshalled body; if the message is also Channeled its channel is
// folded into the command byte's low nibble. Anything else is not
// transmittable.
//
// Every payload byte must be 7-bit clean. A body byte with the high bit set
// would be read as a command boundary on the far side, so Encode rejects it
// rather than corrupt the stream; use EncodeBytes or EncodeUint14 to prepare
// payloads.
func Encode(m Message) ([]byte, error) {
	if sm, ok := m.(SysexTransmittable); ok {
		return encodeSysex(sm)
	}
	if tm, ok := m.(Transmittable); ok {
		return encodeCommand(tm)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotTransmittable, m.MessageKind())
}

func encodeSysex(m SysexTransmittable) ([]byte, error) {
	sub := m.SysexCommand()
	if sub&0x80 != 0 {
		return nil, fmt.Errorf("%w: sysex command 0x%02X", ErrNotSevenBitClean, sub)
	}
	body, err := m.MarshalBody()
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", m.MessageKind(), err)
	}
	if err := checkSevenBit(body); err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", m.MessageKind(), err)
	}
	out := make([]byte, 0, len(body)+3)
	out = append(out, CmdStartSysex, sub)
	out = append(out, body...)
	out = append(out, CmdEndSysex)
	return out, nil
}

func encodeCommand(m Transmittable) ([]byte, error) {
	cmd := m.Command()
	if cmd < 0x80 {
		return nil, fmt.Errorf("command byte 0x%02X for %s lacks the high bit", cmd, m.MessageKind())
	}
	if cm, ok := m.(Channeled); ok {
		ch := cm.Channel()
		if ch < 0 || ch > MaxChannel {
			return nil, fmt.Errorf("%w: channel %d for %s", ErrChannelOutOfRange, ch, m.MessageKind())
		}
		cmd |= byte(ch)
	}
	body, err := m.MarshalBody()
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", m.MessageKind(), err)
	}
	if err := checkSevenBit(body); err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", m.MessageKind(), err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, cmd)
	out = append(out, body...)
	return out, nil
}

func checkSevenBit(body []byte) error {
	for i, b := range body {
		if b&0x80 != 0 {
			return fmt.Errorf("%w: byte %d is 0x%02X", ErrNotSevenBitClean, i, b)
		}
	}
	return nil
}
