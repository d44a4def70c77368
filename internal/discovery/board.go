package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Board represents a discovered network-attached Firmata board
type Board struct {
	// Name is the mDNS service instance name (e.g., "nodemcu-workbench")
	Name string

	// Host is the mDNS hostname (e.g., "nodemcu-workbench.local.")
	Host string

	// IP is the board address (IPv4 preferred, IPv6 fallback)
	IP string

	// Port is the TCP port the Firmata stream listens on (typically 3030)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "board=esp8266", "fw_name=StandardFirmataWiFi"
	Metadata map[string]string

	// DiscoveredAt is when the board was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the board
func (b *Board) String() string {
	return fmt.Sprintf("Firmata board %s (%s) at %s:%d", b.Name, b.Host, b.IP, b.Port)
}

// Addr returns the dialable host:port address for the board
func (b *Board) Addr() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Board) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
