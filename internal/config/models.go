package config

import (
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// This stores saved board connections and application preferences.
type Registry struct {
	Version     int               `yaml:"version"`
	Boards      map[string]*Board `yaml:"boards,omitempty"` // Keyed by user-chosen nickname
	Preferences *Preferences      `yaml:"preferences,omitempty"`
}

// Transport identifiers accepted in a Board entry.
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
	TransportWS     = "ws"
)

// Board describes how to reach a saved board.
// Exactly one connection form is meaningful per transport: Port/Baud for
// serial, Address for tcp (host:port) and ws (URL).
type Board struct {
	Transport string    `yaml:"transport"`           // "serial", "tcp" or "ws"
	Port      string    `yaml:"port,omitempty"`      // Serial device path (e.g. /dev/ttyACM0)
	Baud      int       `yaml:"baud,omitempty"`      // Serial baud rate (0 = protocol default)
	Address   string    `yaml:"address,omitempty"`   // host:port for tcp, URL for ws
	Firmware  string    `yaml:"firmware,omitempty"`  // Last reported firmware name
	LastSeen  time.Time `yaml:"last_seen,omitempty"` // Last successful connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultBoard string `yaml:"default_board,omitempty"` // Nickname used when no connection flags are given
	ScanTimeout  int    `yaml:"scan_timeout"`            // Network discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Boards:  make(map[string]*Board),
		Preferences: &Preferences{
			ScanTimeout: 10,
		},
	}
}

// GetBoard retrieves a saved board by nickname.
// Returns nil if no board with that nickname exists.
func (r *Registry) GetBoard(nickname string) *Board {
	return r.Boards[nickname]
}

// EnsureBoard ensures a board entry exists in the registry.
// If the board doesn't exist, creates a new entry with default values.
// Returns the board entry (existing or newly created).
func (r *Registry) EnsureBoard(nickname string) *Board {
	if r.Boards == nil {
		r.Boards = make(map[string]*Board)
	}

	if board, exists := r.Boards[nickname]; exists {
		return board
	}

	board := &Board{Transport: TransportSerial}
	r.Boards[nickname] = board
	return board
}

// SetSerialBoard saves or updates a serial board under the given nickname.
func (r *Registry) SetSerialBoard(nickname, port string, baud int) {
	board := r.EnsureBoard(nickname)
	board.Transport = TransportSerial
	board.Port = port
	board.Baud = baud
	board.Address = ""
}

// SetNetworkBoard saves or updates a network board under the given nickname.
// transport must be TransportTCP or TransportWS.
func (r *Registry) SetNetworkBoard(nickname, transport, address string) {
	board := r.EnsureBoard(nickname)
	board.Transport = transport
	board.Address = address
	board.Port = ""
	board.Baud = 0
}

// TouchBoard updates the last seen timestamp and firmware name for a board.
func (r *Registry) TouchBoard(nickname, firmware string) {
	board := r.EnsureBoard(nickname)
	board.LastSeen = time.Now()
	if firmware != "" {
		board.Firmware = firmware
	}
}

// RemoveBoard deletes a saved board. Returns true if the nickname existed.
// If the removed board was the default, the default preference is cleared.
func (r *Registry) RemoveBoard(nickname string) bool {
	if _, exists := r.Boards[nickname]; !exists {
		return false
	}
	delete(r.Boards, nickname)
	if r.Preferences != nil && r.Preferences.DefaultBoard == nickname {
		r.Preferences.DefaultBoard = ""
	}
	return true
}

// Nicknames returns the saved board nicknames in sorted order.
func (r *Registry) Nicknames() []string {
	names := make([]string, 0, len(r.Boards))
	for name := range r.Boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransportNames maps transport identifiers to human-readable names.
// This is used for display and validation purposes.
var TransportNames = map[string]string{
	TransportSerial: "Serial port",
	TransportTCP:    "Raw TCP",
	TransportWS:     "WebSocket",
}
