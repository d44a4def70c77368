package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type for network-attached boards.
	// WiFi Firmata firmwares advertise the Arduino service type.
	ServiceType = "_arduino._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for board discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the conventional TCP port for a Firmata byte stream
	DefaultPort = 3030
)

// Scanner handles mDNS board discovery
type Scanner struct {
	// Timeout is the maximum time to wait for board discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForBoards discovers all Firmata boards on the local network
// Returns a list of discovered boards or an error
func (s *Scanner) ScanForBoards() ([]*Board, error) {
	return s.ScanForBoardsWithContext(context.Background())
}

// ScanForBoardsWithContext discovers boards with a custom context
func (s *Scanner) ScanForBoardsWithContext(ctx context.Context) ([]*Board, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	boards := make([]*Board, 0)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			board := s.parseServiceEntry(entry)
			if board != nil {
				boards = append(boards, board)
			}
		}
	}()

	// Start browsing for Arduino services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	return boards, nil
}

// WaitForBoard waits for a specific board by service instance name
// Returns the board or an error if not found within timeout
func (s *Scanner) WaitForBoard(name string) (*Board, error) {
	return s.WaitForBoardWithContext(context.Background(), name)
}

// WaitForBoardWithContext waits for a specific board with a custom context
func (s *Scanner) WaitForBoardWithContext(ctx context.Context, name string) (*Board, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	boardChan := make(chan *Board, 1)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			board := s.parseServiceEntry(entry)
			// Service instance names are case-insensitive in DNS-SD
			if board != nil && strings.EqualFold(board.Name, name) {
				boardChan <- board
				cancel() // Found the board, cancel context
				return
			}
		}
	}()

	// Start browsing for Arduino services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for board or timeout
	select {
	case board := <-boardChan:
		return board, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("board %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Board
// Returns nil if the entry carries no usable name or address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Board {
	name := entry.Instance
	if name == "" {
		// Fall back to the hostname with the domain suffix stripped
		name = strings.TrimSuffix(strings.TrimSuffix(entry.HostName, "."), ".local")
	}
	if name == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default to the Firmata convention if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Board{
		Name:         name,
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForBoards is a convenience function to scan for boards with a custom timeout
func ScanForBoards(timeout time.Duration) ([]*Board, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForBoards()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Board, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForBoards()
}

// FindBoard searches for a specific board by instance name with default timeout
func FindBoard(name string) (*Board, error) {
	scanner := NewScanner()
	return scanner.WaitForBoard(name)
}
