package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name: "board with instance name and IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "nodemcu-workbench"},
				HostName:      "nodemcu-workbench.local.",
				Port:          3030,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"board=esp8266"},
			},
			wantNil:  false,
			wantName: "nodemcu-workbench",
			wantIP:   "192.168.4.16",
			wantPort: 3030,
		},
		{
			name: "board without instance name falls back to hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "esp-12e.local.",
				Port:     3030,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil:  false,
			wantName: "esp-12e",
			wantIP:   "10.0.0.5",
			wantPort: 3030,
		},
		{
			name: "board with custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "mega-wifi"},
				HostName:      "mega-wifi.local.",
				Port:          27016,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantNil:  false,
			wantName: "mega-wifi",
			wantIP:   "192.168.1.100",
			wantPort: 27016,
		},
		{
			name: "board with no port specified (should default to 3030)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "uno-wifi"},
				HostName:      "uno-wifi.local.",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:  false,
			wantName: "uno-wifi",
			wantIP:   "172.16.0.1",
			wantPort: 3030,
		},
		{
			name: "entry with no name at all",
			entry: &zeroconf.ServiceEntry{
				HostName: "",
				Port:     3030,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "entry with no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost"},
				HostName:      "ghost.local.",
				Port:          3030,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only board",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "attic-esp32"},
				HostName:      "attic-esp32.local.",
				Port:          3030,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:  false,
			wantName: "attic-esp32",
			wantIP:   "fe80::1",
			wantPort: 3030,
		},
		{
			name: "board with both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "dual-stack"},
				HostName:      "dual-stack.local.",
				Port:          3030,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:  false,
			wantName: "dual-stack",
			wantIP:   "192.168.1.50",
			wantPort: 3030,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if board != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", board)
				}
				return
			}

			if board == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil board")
			}

			if board.Name != tt.wantName {
				t.Errorf("board.Name = %v, want %v", board.Name, tt.wantName)
			}

			if board.IP != tt.wantIP {
				t.Errorf("board.IP = %v, want %v", board.IP, tt.wantIP)
			}

			if board.Port != tt.wantPort {
				t.Errorf("board.Port = %v, want %v", board.Port, tt.wantPort)
			}

			if board.Host != tt.entry.HostName {
				t.Errorf("board.Host = %v, want %v", board.Host, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(board.DiscoveredAt) > time.Second {
				t.Errorf("board.DiscoveredAt is not recent: %v", board.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "nodemcu-workbench"},
		HostName:      "nodemcu-workbench.local.",
		Port:          3030,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"board=esp8266", "fw_name=StandardFirmataWiFi", "flag", "fw_version=2.5"},
	}

	board := scanner.parseServiceEntry(entry)
	if board == nil {
		t.Fatal("parseServiceEntry() = nil, want board")
	}

	// Check metadata parsing
	expectedMetadata := map[string]string{
		"board":      "esp8266",
		"fw_name":    "StandardFirmataWiFi",
		"flag":       "", // Key without value
		"fw_version": "2.5",
	}

	if len(board.Metadata) != len(expectedMetadata) {
		t.Errorf("board.Metadata has %d entries, want %d", len(board.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := board.Metadata[key]; !ok {
			t.Errorf("board.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("board.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: Integration tests with live mDNS discovery require network access
// and should be run manually with:
// go test -tags=integration ./internal/discovery/
