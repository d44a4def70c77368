package protocol

import (
	"fmt"
	"io"
)

// AnalogMessage (0xE0 | pin) reports the value of an analog pin, and doubles
// as the outbound PWM/analog write for pins 0 through 15. The value is a
// 14-bit quantity; pins above 15 cannot ride in the command nibble and must
// use ExtendedAnalogMessage instead.
type AnalogMessage struct {
	Pin   int // analog pin number as counted by the firmware
	Value int // reading or write level, 0-16383
}

func (m *AnalogMessage) MessageKind() Kind { return KindAnalog }
func (m *AnalogMessage) Channel() int      { return m.Pin }
func (m *AnalogMessage) Command() byte     { return CmdAnalogMessage }

func (m *AnalogMessage) MarshalBody() ([]byte, error) {
	lsb, msb, err := EncodeUint14(m.Value)
	if err != nil {
		return nil, err
	}
	return []byte{lsb, msb}, nil
}

func (m *AnalogMessage) String() string {
	return fmt.Sprintf("Analog{pin=%d, value=%d}", m.Pin, m.Value)
}

func buildAnalog(channel int, r ByteSource) (Message, error) {
	body, err := readBody(r, 2)
	if err != nil {
		return nil, err
	}
	return &AnalogMessage{Pin: channel, Value: DecodeUint14(body[0], body[1])}, nil
}

// DigitalMessage (0x90 | port) carries the state of one digital port, eight
// pins packed into a bitmask. It is also the outbound form for writing a
// whole port at once.
type DigitalMessage struct {
	Port int  // digital port number, eight pins per port
	Pins byte // bit i holds the state of pin Port*8 + i
}

func (m *DigitalMessage) MessageKind() Kind { return KindDigital }
func (m *DigitalMessage) Channel() int      { return m.Port }
func (m *DigitalMessage) Command() byte     { return CmdDigitalMessage }

func (m *DigitalMessage) MarshalBody() ([]byte, error) {
	lsb, msb := EncodePair(int(m.Pins))
	return []byte{lsb, msb}, nil
}

// High reports the state of bit i of the port, i in 0..7.
func (m *DigitalMessage) High(i int) bool {
	return i >= 0 && i < 8 && m.Pins&(1<<i) != 0
}

func (m *DigitalMessage) String() string {
	return fmt.Sprintf("Digital{port=%d, pins=%08b}", m.Port, m.Pins)
}

func buildDigital(channel int, r ByteSource) (Message, error) {
	body, err := readBody(r, 2)
	if err != nil {
		return nil, err
	}
	return &DigitalMessage{Port: channel, Pins: byte(DecodeUint14(body[0], body[1]))}, nil
}

// ProtocolVersionMessage (0xF9 + two bytes) reports the wire protocol
// version the firmware speaks. Firmware sends it on reset and in answer to
// ProtocolVersionQueryMessage.
type ProtocolVersionMessage struct {
	Major int
	Minor int
}

func (m *ProtocolVersionMessage) MessageKind() Kind { return KindProtocolVersion }

func (m *ProtocolVersionMessage) String() string {
	return fmt.Sprintf("ProtocolVersion{%d.%d}", m.Major, m.Minor)
}

func buildProtocolVersion(_ int, r ByteSource) (Message, error) {
	body, err := readBody(r, 2)
	if err != nil {
		return nil, err
	}
	return &ProtocolVersionMessage{Major: int(body[0]), Minor: int(body[1])}, nil
}

// ProtocolVersionQueryMessage is the bare 0xF9 byte asking the firmware to
// report its protocol version.
type ProtocolVersionQueryMessage struct{}

func (m *ProtocolVersionQueryMessage) MessageKind() Kind { return KindProtocolVersionQuery }
func (m *ProtocolVersionQueryMessage) Command() byte     { return CmdProtocolVersion }

func (m *ProtocolVersionQueryMessage) MarshalBody() ([]byte, error) { return nil, nil }

func (m *ProtocolVersionQueryMessage) String() string { return "ProtocolVersionQuery{}" }

// SetPinModeMessage (0xF4) configures the mode of one pin. Outbound only.
type SetPinModeMessage struct {
	Pin  int
	Mode PinMode
}

func (m *SetPinModeMessage) MessageKind() Kind { return KindSetPinMode }
func (m *SetPinModeMessage) Command() byte     { return CmdSetPinMode }

func (m *SetPinModeMessage) MarshalBody() ([]byte, error) {
	if m.Pin < 0 || m.Pin > 127 {
		return nil, fmt.Errorf("%w: pin %d", ErrValueOutOfRange, m.Pin)
	}
	return []byte{byte(m.Pin), byte(m.Mode)}, nil
}

func (m *SetPinModeMessage) String() string {
	return fmt.Sprintf("SetPinMode{pin=%d, mode=%s}", m.Pin, m.Mode)
}

// SetDigitalPinValueMessage (0xF5) drives a single digital pin high or low
// without touching the rest of its port. Outbound only.
type SetDigitalPinValueMessage struct {
	Pin  int
	High bool
}

func (m *SetDigitalPinValueMessage) MessageKind() Kind { return KindSetDigitalPinValue }
func (m *SetDigitalPinValueMessage) Command() byte     { return CmdSetDigitalPinValue }

func (m *SetDigitalPinValueMessage) MarshalBody() ([]byte, error) {
	if m.Pin < 0 || m.Pin > 127 {
		return nil, fmt.Errorf("%w: pin %d", ErrValueOutOfRange, m.Pin)
	}
	return []byte{byte(m.Pin), boolByte(m.High)}, nil
}

func (m *SetDigitalPinValueMessage) String() string {
	return fmt.Sprintf("SetDigitalPinValue{pin=%d, high=%v}", m.Pin, m.High)
}

// ReportAnalogMessage (0xC0 | pin) enables or disables the periodic value
// reports for one analog pin. Outbound only.
type ReportAnalogMessage struct {
	Pin     int
	Enabled bool
}

func (m *ReportAnalogMessage) MessageKind() Kind { return KindReportAnalog }
func (m *ReportAnalogMessage) Channel() int      { return m.Pin }
func (m *ReportAnalogMessage) Command() byte     { return CmdReportAnalog }

func (m *ReportAnalogMessage) MarshalBody() ([]byte, error) {
	return []byte{boolByte(m.Enabled)}, nil
}

func (m *ReportAnalogMessage) String() string {
	return fmt.Sprintf("ReportAnalog{pin=%d, enabled=%v}", m.Pin, m.Enabled)
}

// ReportDigitalMessage (0xD0 | port) enables or disables the state reports
// for one digital port. Outbound only.
type ReportDigitalMessage struct {
	Port    int
	Enabled bool
}

func (m *ReportDigitalMessage) MessageKind() Kind { return KindReportDigital }
func (m *ReportDigitalMessage) Channel() int      { return m.Port }
func (m *ReportDigitalMessage) Command() byte     { return CmdReportDigital }

func (m *ReportDigitalMessage) MarshalBody() ([]byte, error) {
	return []byte{boolByte(m.Enabled)}, nil
}

func (m *ReportDigitalMessage) String() string {
	return fmt.Sprintf("ReportDigital{port=%d, enabled=%v}", m.Port, m.Enabled)
}

// SystemResetMessage (0xFF) asks the firmware to return to its power-up
// state. Outbound only.
type SystemResetMessage struct{}

func (m *SystemResetMessage) MessageKind() Kind { return KindSystemReset }
func (m *SystemResetMessage) Command() byte     { return CmdSystemReset }

func (m *SystemResetMessage) MarshalBody() ([]byte, error) { return nil, nil }

func (m *SystemResetMessage) String() string { return "SystemReset{}" }

// registerBuiltins installs the builders for everything firmware sends on
// its own or in answer to the queries above.
func registerBuiltins(r *Registry) {
	r.Register(CmdAnalogMessage, buildAnalog)
	r.Register(CmdDigitalMessage, buildDigital)
	r.Register(CmdProtocolVersion, buildProtocolVersion)
	r.RegisterSysex(SysexReportFirmware, buildReportFirmware)
	r.RegisterSysex(SysexStringData, buildStringData)
	r.RegisterSysex(SysexCapabilityResponse, buildCapabilityResponse)
	r.RegisterSysex(SysexAnalogMappingResponse, buildAnalogMappingResponse)
	r.RegisterSysex(SysexPinStateResponse, buildPinStateResponse)
}

// readBody reads exactly n body bytes. Builders use it so a short stream
// surfaces as an error instead of a silent partial message.
func readBody(r ByteSource, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
