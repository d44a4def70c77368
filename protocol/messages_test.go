package protocol

import (
	"strings"
	"testing"
)

func TestPinModeStrings(t *testing.T) {
	for m := PinModeInput; m <= PinModePullup; m++ {
		name := m.String()
		if strings.HasPrefix(name, "unknown(") {
			t.Errorf("PinMode %d has no name", m)
			continue
		}
		back, ok := ParsePinMode(name)
		if !ok || back != m {
			t.Errorf("ParsePinMode(%q) = %v, %v, want %v", name, back, ok, m)
		}
	}
	if got := PinMode(0x42).String(); got != "unknown(0x42)" {
		t.Errorf("unknown mode renders as %q", got)
	}
	if _, ok := ParsePinMode("bogus"); ok {
		t.Error("ParsePinMode accepted a bogus name")
	}
}

func TestMessageStrings(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{&AnalogMessage{Pin: 2, Value: 144}, "Analog{pin=2, value=144}"},
		{&DigitalMessage{Port: 1, Pins: 0x85}, "Digital{port=1, pins=10000101}"},
		{&ProtocolVersionMessage{Major: 2, Minor: 5}, "ProtocolVersion{2.5}"},
		{&SetPinModeMessage{Pin: 13, Mode: PinModePWM}, "SetPinMode{pin=13, mode=pwm}"},
		{&ReportFirmwareMessage{}, "ReportFirmware{query}"},
		{&ReportFirmwareMessage{Major: 2, Minor: 5, Name: "Blink"}, "ReportFirmware{Blink 2.5}"},
		{&StringDataMessage{Value: "hi"}, `StringData{"hi"}`},
		{&PinStateResponseMessage{Pin: 2, Mode: PinModeOutput, State: 1}, "PinState{pin=2, mode=output, state=1}"},
		{&SamplingIntervalMessage{Millis: 19}, "SamplingInterval{19ms}"},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMessageKinds(t *testing.T) {
	// Kind is the dispatch identity; two different variants must never
	// share one.
	msgs := []Message{
		&AnalogMessage{}, &DigitalMessage{}, &ProtocolVersionMessage{},
		&ProtocolVersionQueryMessage{}, &SetPinModeMessage{},
		&SetDigitalPinValueMessage{}, &ReportAnalogMessage{},
		&ReportDigitalMessage{}, &SystemResetMessage{},
		&ReportFirmwareMessage{}, &StringDataMessage{},
		&CapabilityQueryMessage{}, &CapabilityResponseMessage{},
		&AnalogMappingQueryMessage{}, &AnalogMappingResponseMessage{},
		&PinStateQueryMessage{}, &PinStateResponseMessage{},
		&ExtendedAnalogMessage{}, &SamplingIntervalMessage{},
	}
	seen := make(map[Kind]Message)
	for _, m := range msgs {
		k := m.MessageKind()
		if k == "" {
			t.Errorf("%T has an empty kind", m)
		}
		if prev, dup := seen[k]; dup {
			t.Errorf("%T and %T share kind %q", prev, m, k)
		}
		seen[k] = m
	}
}

func TestChanneledMessages(t *testing.T) {
	tests := []struct {
		msg  Channeled
		want int
	}{
		{&AnalogMessage{Pin: 7}, 7},
		{&DigitalMessage{Port: 1}, 1},
		{&ReportAnalogMessage{Pin: 15}, 15},
		{&ReportDigitalMessage{Port: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.msg.Channel(); got != tt.want {
			t.Errorf("%T Channel() = %d, want %d", tt.msg, got, tt.want)
		}
	}

	// Messages without a wire channel must not claim one.
	for _, m := range []Message{
		&SetPinModeMessage{}, &ProtocolVersionMessage{}, &ReportFirmwareMessage{},
	} {
		if _, ok := m.(Channeled); ok {
			t.Errorf("%T unexpectedly implements Channeled", m)
		}
	}
}
