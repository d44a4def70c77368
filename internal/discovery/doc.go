// Package discovery provides mDNS-based discovery of network-attached boards.
//
// This package implements multicast DNS (mDNS) service discovery to automatically
// locate Firmata boards on the local network. WiFi-flashed boards (ESP8266/ESP32
// and WiFi-shield Arduinos) advertise themselves using the "_arduino._tcp"
// service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_arduino._tcp" service advertisements
//  3. Collects board information (instance name, hostname, IP, port, TXT records)
//  4. Returns a list of discovered boards after the timeout period
//
// # Usage Example
//
//	// Discover boards with 10-second timeout
//	boards, err := discovery.ScanForBoards(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered boards
//	for _, board := range boards {
//	    fmt.Printf("Found: %s at %s\n", board.Name, board.Addr())
//	}
//
// # Announcing
//
// The other direction is also covered: Announce publishes a local TCP
// listener under the same service type, which is how firmata-bridge makes
// a serial board scannable from other machines:
//
//	announcer, err := discovery.Announce("bench-pi", 3030, map[string]string{
//	    "board": "/dev/ttyACM0",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer announcer.Close()
//
// # Board Information
//
// Each discovered board includes:
//   - Name: mDNS service instance name (e.g., "nodemcu-workbench")
//   - Host: board's network hostname
//   - IP: IPv4 address (IPv6 fallback)
//   - Port: TCP port for the Firmata byte stream (typically 3030)
//   - Metadata: TXT record key/value pairs
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Boards must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
