package protocol

import (
	"fmt"
	"strings"
)

// ReadSysexBody consumes bytes through the closing 0xF7 and returns the body
// without the terminator. Custom sysex builders can lean on it instead of
// hand-rolling the terminator scan; a stream that ends first yields
// ErrUnterminatedSysex.
func ReadSysexBody(r ByteSource) ([]byte, error) {
	var body []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, unterminated(err)
		}
		if b == CmdEndSysex {
			return body, nil
		}
		body = append(body, b)
	}
}

// ReportFirmwareMessage (sysex 0x79) names the sketch running on the board
// and its version. The empty message doubles as the query: firmware answers
// a bare 0xF0 0x79 0xF7 with the populated form, so sending the zero value
// asks and listening for the kind receives the answer.
type ReportFirmwareMessage struct {
	Major int
	Minor int
	Name  string
}

func (m *ReportFirmwareMessage) MessageKind() Kind  { return KindReportFirmware }
func (m *ReportFirmwareMessage) SysexCommand() byte { return SysexReportFirmware }

func (m *ReportFirmwareMessage) MarshalBody() ([]byte, error) {
	if m.Major == 0 && m.Minor == 0 && m.Name == "" {
		return nil, nil
	}
	if m.Major < 0 || m.Major > 127 || m.Minor < 0 || m.Minor > 127 {
		return nil, fmt.Errorf("%w: version %d.%d", ErrValueOutOfRange, m.Major, m.Minor)
	}
	body := make([]byte, 0, 2+len(m.Name)*2)
	body = append(body, byte(m.Major), byte(m.Minor))
	return append(body, EncodeString(m.Name)...), nil
}

func (m *ReportFirmwareMessage) String() string {
	if m.Major == 0 && m.Minor == 0 && m.Name == "" {
		return "ReportFirmware{query}"
	}
	return fmt.Sprintf("ReportFirmware{%s %d.%d}", m.Name, m.Major, m.Minor)
}

func buildReportFirmware(r ByteSource) (Message, error) {
	body, err := ReadSysexBody(r)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return &ReportFirmwareMessage{}, nil
	}
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: firmware report of %d bytes", ErrMalformedBody, len(body))
	}
	name, err := DecodeString(body[2:])
	if err != nil {
		return nil, err
	}
	return &ReportFirmwareMessage{Major: int(body[0]), Minor: int(body[1]), Name: name}, nil
}

// StringDataMessage (sysex 0x71) is the protocol's free-text side channel.
// Firmware uses it for debug prints and error reports; it is equally valid
// outbound.
type StringDataMessage struct {
	Value string
}

func (m *StringDataMessage) MessageKind() Kind  { return KindStringData }
func (m *StringDataMessage) SysexCommand() byte { return SysexStringData }

func (m *StringDataMessage) MarshalBody() ([]byte, error) {
	return EncodeString(m.Value), nil
}

func (m *StringDataMessage) String() string {
	return fmt.Sprintf("StringData{%q}", m.Value)
}

func buildStringData(r ByteSource) (Message, error) {
	body, err := ReadSysexBody(r)
	if err != nil {
		return nil, err
	}
	value, err := DecodeString(body)
	if err != nil {
		return nil, err
	}
	return &StringDataMessage{Value: value}, nil
}

// CapabilityQueryMessage (sysex 0x6B) asks the board to enumerate every pin
// and the modes it supports. Outbound only; the answer arrives as a
// CapabilityResponseMessage.
type CapabilityQueryMessage struct{}

func (m *CapabilityQueryMessage) MessageKind() Kind  { return KindCapabilityQuery }
func (m *CapabilityQueryMessage) SysexCommand() byte { return SysexCapabilityQuery }

func (m *CapabilityQueryMessage) MarshalBody() ([]byte, error) { return nil, nil }

func (m *CapabilityQueryMessage) String() string { return "CapabilityQuery{}" }

// ModeResolution is one supported mode of a pin together with the value
// resolution the board reports for it, in bits.
type ModeResolution struct {
	Mode       PinMode
	Resolution int
}

// PinCapability lists the modes one pin supports, in the order the board
// reported them. A pin with no modes exists on the header but cannot be
// driven by the firmware.
type PinCapability struct {
	Pin   int
	Modes []ModeResolution
}

// Supports reports whether the pin can be put into mode.
func (c PinCapability) Supports(mode PinMode) bool {
	for _, mr := range c.Modes {
		if mr.Mode == mode {
			return true
		}
	}
	return false
}

// CapabilityResponseMessage (sysex 0x6C) is the board's pin inventory. Pins
// appear in order; within each pin the body alternates mode and resolution
// bytes until the 0x7F separator closes the pin.
type CapabilityResponseMessage struct {
	Pins []PinCapability
}

func (m *CapabilityResponseMessage) MessageKind() Kind { return KindCapabilityResponse }

func (m *CapabilityResponseMessage) String() string {
	return fmt.Sprintf("CapabilityResponse{pins=%d}", len(m.Pins))
}

func buildCapabilityResponse(r ByteSource) (Message, error) {
	body, err := ReadSysexBody(r)
	if err != nil {
		return nil, err
	}
	msg := &CapabilityResponseMessage{}
	current := PinCapability{Pin: 0}
	for i := 0; i < len(body); {
		if body[i] == capabilitySeparator {
			msg.Pins = append(msg.Pins, current)
			current = PinCapability{Pin: current.Pin + 1}
			i++
			continue
		}
		if i+1 >= len(body) {
			return nil, fmt.Errorf("%w: capability entry for pin %d truncated", ErrMalformedBody, current.Pin)
		}
		current.Modes = append(current.Modes, ModeResolution{
			Mode:       PinMode(body[i]),
			Resolution: int(body[i+1]),
		})
		i += 2
	}
	if len(current.Modes) != 0 {
		return nil, fmt.Errorf("%w: capability list for pin %d missing separator", ErrMalformedBody, current.Pin)
	}
	return msg, nil
}

// AnalogMappingQueryMessage (sysex 0x69) asks how analog channel numbers map
// onto digital pin numbers. Outbound only.
type AnalogMappingQueryMessage struct{}

func (m *AnalogMappingQueryMessage) MessageKind() Kind  { return KindAnalogMappingQuery }
func (m *AnalogMappingQueryMessage) SysexCommand() byte { return SysexAnalogMappingQuery }

func (m *AnalogMappingQueryMessage) MarshalBody() ([]byte, error) { return nil, nil }

func (m *AnalogMappingQueryMessage) String() string { return "AnalogMappingQuery{}" }

// AnalogMappingResponseMessage (sysex 0x6A) carries one byte per digital
// pin: the pin's analog channel number, or 0x7F when the pin has no analog
// capability.
type AnalogMappingResponseMessage struct {
	// Channels is indexed by digital pin number and holds the analog
	// channel, NoChannel for pins that are not analog.
	Channels []int
}

func (m *AnalogMappingResponseMessage) MessageKind() Kind { return KindAnalogMappingResponse }

// ChannelFor reports the analog channel of a digital pin.
func (m *AnalogMappingResponseMessage) ChannelFor(pin int) (int, bool) {
	if pin < 0 || pin >= len(m.Channels) || m.Channels[pin] == NoChannel {
		return NoChannel, false
	}
	return m.Channels[pin], true
}

func (m *AnalogMappingResponseMessage) String() string {
	var mapped []string
	for pin, ch := range m.Channels {
		if ch != NoChannel {
			mapped = append(mapped, fmt.Sprintf("%d:A%d", pin, ch))
		}
	}
	return fmt.Sprintf("AnalogMapping{%s}", strings.Join(mapped, " "))
}

func buildAnalogMappingResponse(r ByteSource) (Message, error) {
	body, err := ReadSysexBody(r)
	if err != nil {
		return nil, err
	}
	msg := &AnalogMappingResponseMessage{Channels: make([]int, len(body))}
	for pin, b := range body {
		if b == analogMappingNone {
			msg.Channels[pin] = NoChannel
		} else {
			msg.Channels[pin] = int(b)
		}
	}
	return msg, nil
}

// PinStateQueryMessage (sysex 0x6D) asks for the current mode and state of
// one pin. Outbound only.
type PinStateQueryMessage struct {
	Pin int
}

func (m *PinStateQueryMessage) MessageKind() Kind  { return KindPinStateQuery }
func (m *PinStateQueryMessage) SysexCommand() byte { return SysexPinStateQuery }

func (m *PinStateQueryMessage) MarshalBody() ([]byte, error) {
	if m.Pin < 0 || m.Pin > 127 {
		return nil, fmt.Errorf("%w: pin %d", ErrValueOutOfRange, m.Pin)
	}
	return []byte{byte(m.Pin)}, nil
}

func (m *PinStateQueryMessage) String() string {
	return fmt.Sprintf("PinStateQuery{pin=%d}", m.Pin)
}

// PinStateResponseMessage (sysex 0x6E) reports a pin's mode and its current
// state. The meaning of State depends on the mode: the output level for
// output pins, the pullup status for inputs, and so on.
type PinStateResponseMessage struct {
	Pin   int
	Mode  PinMode
	State int
}

func (m *PinStateResponseMessage) MessageKind() Kind { return KindPinStateResponse }

func (m *PinStateResponseMessage) String() string {
	return fmt.Sprintf("PinState{pin=%d, mode=%s, state=%d}", m.Pin, m.Mode, m.State)
}

func buildPinStateResponse(r ByteSource) (Message, error) {
	body, err := ReadSysexBody(r)
	if err != nil {
		return nil, err
	}
	if len(body) < 3 {
		return nil, fmt.Errorf("%w: pin state report of %d bytes", ErrMalformedBody, len(body))
	}
	return &PinStateResponseMessage{
		Pin:   int(body[0]),
		Mode:  PinMode(body[1]),
		State: groupsValue(body[2:]),
	}, nil
}

// ExtendedAnalogMessage (sysex 0x6F) writes an analog value to any pin,
// lifting the 16-pin and 14-bit limits of AnalogMessage. Outbound only.
type ExtendedAnalogMessage struct {
	Pin   int
	Value int
}

func (m *ExtendedAnalogMessage) MessageKind() Kind  { return KindExtendedAnalog }
func (m *ExtendedAnalogMessage) SysexCommand() byte { return SysexExtendedAnalog }

func (m *ExtendedAnalogMessage) MarshalBody() ([]byte, error) {
	if m.Pin < 0 || m.Pin > 127 {
		return nil, fmt.Errorf("%w: pin %d", ErrValueOutOfRange, m.Pin)
	}
	if m.Value < 0 {
		return nil, fmt.Errorf("%w: value %d", ErrValueOutOfRange, m.Value)
	}
	return appendGroups([]byte{byte(m.Pin)}, m.Value), nil
}

func (m *ExtendedAnalogMessage) String() string {
	return fmt.Sprintf("ExtendedAnalog{pin=%d, value=%d}", m.Pin, m.Value)
}

// SamplingIntervalMessage (sysex 0x7A) sets how often the firmware sweeps
// its enabled analog pins, in milliseconds. Outbound only.
type SamplingIntervalMessage struct {
	Millis int
}

func (m *SamplingIntervalMessage) MessageKind() Kind  { return KindSamplingInterval }
func (m *SamplingIntervalMessage) SysexCommand() byte { return SysexSamplingInterval }

func (m *SamplingIntervalMessage) MarshalBody() ([]byte, error) {
	lsb, msb, err := EncodeUint14(m.Millis)
	if err != nil {
		return nil, err
	}
	return []byte{lsb, msb}, nil
}

func (m *SamplingIntervalMessage) String() string {
	return fmt.Sprintf("SamplingInterval{%dms}", m.Millis)
}

// appendGroups encodes v into 7-bit groups, least significant first, always
// emitting at least one byte.
func appendGroups(dst []byte, v int) []byte {
	dst = append(dst, byte(v)&0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		dst = append(dst, byte(v)&0x7F)
	}
	return dst
}

// groupsValue reassembles a value from its 7-bit groups.
func groupsValue(groups []byte) int {
	v := 0
	for i, b := range groups {
		v |= int(b&0x7F) << (7 * i)
	}
	return v
}
