// Package firmata is a client for boards running Firmata firmware. It turns
// a raw transport connection into typed protocol messages and routes them to
// listeners registered by message kind and, optionally, by pin or port.
//
// A minimal session over a serial port:
//
//	port, err := transport.OpenSerial("/dev/ttyACM0", transport.DefaultSerialConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := firmata.New(port)
//	client.Listen(protocol.KindAnalog, func(msg protocol.Message) {
//		reading := msg.(*protocol.AnalogMessage)
//		fmt.Printf("A%d = %d\n", reading.Pin, reading.Value)
//	})
//
//	if err := client.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Stop()
//
//	client.SetPinMode(14, protocol.PinModeAnalog)
//	client.ReportAnalog(0, true)
//
// Listeners run synchronously on the read goroutine in registration order.
// A listener registered with ListenChannel sees only its own pin or port;
// one registered with Listen sees every message of its kind.
//
// The wire format, the message catalog, and the extension points for custom
// commands live in the protocol subpackage; serial, TCP, and WebSocket
// transports live in the transport subpackage.
package firmata
