// Package transport opens byte-stream connections to Firmata boards.
//
// The client needs nothing beyond io.ReadWriteCloser: blocking reads that
// return at least one byte, bulk writes that take a whole encoded message,
// and a Close that unblocks a pending read. Everything here satisfies that
// contract.
//
// OpenSerial covers the common case of a board on a USB serial port.
// DialTCP reaches network-attached boards that expose the raw byte stream
// on a TCP port, and DialWebSocket reaches bridges that wrap the stream in
// binary WebSocket frames (see the firmata-bridge command).
package transport
