package protocol

import (
	"sync"
	"testing"
)

func stubBuilder(tag string) BuildFunc {
	return func(channel int, r ByteSource) (Message, error) {
		return &StringDataMessage{Value: tag}, nil
	}
}

func TestResolveCommand(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register(CmdDigitalMessage, stubBuilder("digital"))
	reg.Register(CmdProtocolVersion, stubBuilder("version"))

	tests := []struct {
		name        string
		raw         byte
		wantOK      bool
		wantChannel int
	}{
		{"masked family, channel 1", 0x91, true, 1},
		{"masked family, channel 15", 0x9F, true, 15},
		{"family base is channel 0", 0x90, true, 0},
		{"exact high command", 0xF9, true, NoChannel},
		{"unregistered family", 0xE2, false, NoChannel},
		{"unregistered high command", 0xFF, false, NoChannel},
		{"data byte", 0x42, false, NoChannel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, channel, ok := reg.resolveCommand(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("resolveCommand(0x%02X) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if channel != tt.wantChannel {
				t.Errorf("resolveCommand(0x%02X) channel = %d, want %d", tt.raw, channel, tt.wantChannel)
			}
			if ok && fn == nil {
				t.Errorf("resolveCommand(0x%02X) returned nil builder", tt.raw)
			}
		})
	}
}

func TestExactRegistrationBeatsMask(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register(0x90, stubBuilder("family"))
	reg.Register(0x95, stubBuilder("exact"))

	fn, channel, ok := reg.resolveCommand(0x95)
	if !ok {
		t.Fatal("resolveCommand(0x95) did not resolve")
	}
	if channel != 5 {
		t.Errorf("channel = %d, want 5", channel)
	}
	msg, err := fn(channel, nil)
	if err != nil {
		t.Fatalf("builder error: %v", err)
	}
	if msg.(*StringDataMessage).Value != "exact" {
		t.Errorf("resolved %q, want the exact registration", msg.(*StringDataMessage).Value)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register(0x90, stubBuilder("first"))
	reg.Register(0x90, stubBuilder("second"))

	fn, _, ok := reg.resolveCommand(0x90)
	if !ok {
		t.Fatal("resolveCommand(0x90) did not resolve")
	}
	msg, _ := fn(0, nil)
	if msg.(*StringDataMessage).Value != "second" {
		t.Errorf("resolved %q, want the later registration", msg.(*StringDataMessage).Value)
	}
}

func TestResolveSysex(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.RegisterSysex(SysexReportFirmware, func(r ByteSource) (Message, error) {
		return &ReportFirmwareMessage{}, nil
	})

	if _, ok := reg.resolveSysex(SysexReportFirmware); !ok {
		t.Error("registered sysex sub-command did not resolve")
	}
	if _, ok := reg.resolveSysex(SysexStringData); ok {
		t.Error("unregistered sysex sub-command resolved")
	}
}

func TestNewRegistryInstallsBuiltins(t *testing.T) {
	reg := NewRegistry()

	for _, raw := range []byte{CmdAnalogMessage, CmdDigitalMessage, CmdProtocolVersion} {
		if _, _, ok := reg.resolveCommand(raw); !ok {
			t.Errorf("built-in command 0x%02X not registered", raw)
		}
	}
	for _, sub := range []byte{
		SysexReportFirmware, SysexStringData, SysexCapabilityResponse,
		SysexAnalogMappingResponse, SysexPinStateResponse,
	} {
		if _, ok := reg.resolveSysex(sub); !ok {
			t.Errorf("built-in sysex 0x%02X not registered", sub)
		}
	}
}

func TestConcurrentRegistration(t *testing.T) {
	// Registration races against resolution; every resolve must see either
	// the old or the new builder, never tear.
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Register(0x80|n<<4, stubBuilder("race"))
			}
		}(byte(i % 4))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.resolveCommand(0x91)
				reg.resolveSysex(SysexStringData)
			}
		}()
	}
	wg.Wait()

	if _, _, ok := reg.resolveCommand(0x91); !ok {
		t.Error("builder lost after concurrent registration")
	}
}
