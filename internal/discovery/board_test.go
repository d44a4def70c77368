package discovery

import (
	"testing"
	"time"
)

func TestBoard_String(t *testing.T) {
	board := &Board{
		Name: "nodemcu-workbench",
		Host: "nodemcu-workbench.local.",
		IP:   "192.168.4.16",
		Port: 3030,
	}

	expected := "Firmata board nodemcu-workbench (nodemcu-workbench.local.) at 192.168.4.16:3030"
	if board.String() != expected {
		t.Errorf("Board.String() = %v, want %v", board.String(), expected)
	}
}

func TestBoard_Addr(t *testing.T) {
	tests := []struct {
		name     string
		board    *Board
		expected string
	}{
		{
			name: "IPv4 address",
			board: &Board{
				IP:   "192.168.4.16",
				Port: 3030,
			},
			expected: "192.168.4.16:3030",
		},
		{
			name: "custom port",
			board: &Board{
				IP:   "10.0.0.5",
				Port: 27016,
			},
			expected: "10.0.0.5:27016",
		},
		{
			name: "IPv6 address gets bracketed",
			board: &Board{
				IP:   "fe80::1",
				Port: 3030,
			},
			expected: "[fe80::1]:3030",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.Addr(); got != tt.expected {
				t.Errorf("Board.Addr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBoard_GetMetadata(t *testing.T) {
	board := &Board{
		Metadata: map[string]string{
			"board":   "esp8266",
			"fw_name": "StandardFirmataWiFi",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "existing key",
			key:      "board",
			expected: "esp8266",
		},
		{
			name:     "another existing key",
			key:      "fw_name",
			expected: "StandardFirmataWiFi",
		},
		{
			name:     "non-existent key",
			key:      "missing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := board.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Board.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestBoard_GetMetadata_NilMap(t *testing.T) {
	board := &Board{
		Metadata: nil,
	}

	if got := board.GetMetadata("anything"); got != "" {
		t.Errorf("Board.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestBoard_DiscoveredAt(t *testing.T) {
	now := time.Now()
	board := &Board{
		Name:         "nodemcu-workbench",
		DiscoveredAt: now,
	}

	if board.DiscoveredAt != now {
		t.Errorf("Board.DiscoveredAt = %v, want %v", board.DiscoveredAt, now)
	}
}
