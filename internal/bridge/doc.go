// Package bridge exposes a locally attached board over the network.
//
// The bridge opens the board's serial port once and relays the raw byte
// stream to network clients, so a board wired to one machine can be driven
// from another. Nothing is parsed or rewritten in transit: clients speak
// the same wire format they would over a direct serial connection.
//
// # Listeners
//
// Two listener types can be enabled independently:
//   - A raw TCP listener. Clients connect and exchange bytes directly,
//     matching WiFi firmwares that serve the protocol over a plain socket.
//   - An HTTP listener with a /ws endpoint that upgrades to WebSocket and
//     carries the byte stream in binary messages. The same listener serves
//     /status with the relay counters as JSON.
//
// With Config.Announce set, the TCP listener is advertised over mDNS using
// the same service type network firmwares use, so scanners can find the
// bridge without knowing its address.
//
// # Single client
//
// The board link carries one conversation: replies carry no addressing, so
// two clients cannot share it. The bridge keeps a single active session and
// hands the board to the newest client, disconnecting the previous one.
// Bytes the board emits while no client is attached are dropped and counted.
//
// # Usage Example
//
//	port, err := transport.OpenSerial("/dev/ttyACM0", transport.DefaultSerialConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := bridge.New(port, &bridge.Config{
//	    Listen:    ":3030",
//	    WSListen:  ":8080",
//	    BoardName: "/dev/ttyACM0",
//	    LogLevel:  "info",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run blocks until SIGINT/SIGTERM or the board link fails.
//	if err := b.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the bridge stops accepting clients, disconnects the
// active one, closes the board link, and waits for the relay goroutines to
// drain before returning.
package bridge
