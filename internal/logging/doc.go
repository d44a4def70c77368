// Package logging provides structured logging for the firmata tooling.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the CLI and the bridge. It provides both general
// logging functions and specialized functions for wire-level logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, decoded messages, dropped bytes)
//   - Info: Normal operations (connections, reports, state changes)
//   - Warn: Non-fatal issues (connection drops, retries)
//   - Error: Fatal issues (startup failures, decode errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Board connected",
//	    zap.String("port", "/dev/ttyACM0"),
//	    zap.String("firmware", "StandardFirmata"),
//	    zap.String("version", "2.5"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "client_attached")
//	logging.LogConnection(remoteAddr, "client_detached")
//
// Raw Byte Logging:
//
//	logging.LogRawBytes("serial read", buf[:n])
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands normally call InitializeFromEnv instead, which keeps output
// silent unless FIRMATA_LOG_LEVEL is set.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable):
//
//	2025-11-25T10:30:45.123-0800  INFO  Connection event
//	  remote_addr=192.168.1.100
//	  event=connection_accepted
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
